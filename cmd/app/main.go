package main

import "sales-request-api/app"

func main() {
	app.Run()
}
