package entity

// Contact is the person a request will be submitted on behalf of. Looked up
// from the cached CRM dataset and stored on the request as a structured value.
// MineGroup and MineName always travel together (domain rule, not just a
// type constraint).
type Contact struct {
	PersonId  int    `json:"personId"`
	Name      string `json:"name"`
	MineGroup string `json:"mineGroup"`
	MineName  string `json:"mineName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	JobTitle  string `json:"jobTitle,omitempty"`
}

// LineItem is a product + quantity entry attached to a request. Position in
// the slice mirrors the persisted display order.
type LineItem struct {
	Id               int     `json:"id" db:"id"`
	ProductId        int     `json:"productId" db:"product_id"`
	Name             string  `json:"name" db:"name"`
	Code             string  `json:"code,omitempty" db:"code"`
	Category         string  `json:"category,omitempty" db:"category"`
	Quantity         int     `json:"quantity" db:"quantity"`
	UnitPrice        float64 `json:"unitPrice" db:"unit_price"`
	TotalPrice       float64 `json:"totalPrice" db:"total_price"`
	ShortDescription string  `json:"shortDescription,omitempty" db:"short_description"`
}
