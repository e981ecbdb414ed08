package entity

import (
	"github.com/google/uuid"
)

// db model
type Request struct {
	Id                   uuid.UUID  `json:"id" db:"id"`
	RequestId            string     `json:"requestId" db:"request_code"`
	Status               string     `json:"status" db:"status"`
	SalespersonFirstName string     `json:"salespersonFirstName" db:"salesperson_first_name"`
	SalespersonSelection string     `json:"salespersonSelection" db:"salesperson_selection"`
	Contact              *Contact   `json:"contact" db:"contact"`
	LineItems            []LineItem `json:"lineItems"`
	Comment              string     `json:"comment" db:"comment"`
	PipedriveDealId      *int       `json:"pipedriveDealId" db:"pipedrive_deal_id"`
	CreatedAt            string     `json:"createdAt" db:"created_at"`
	UpdatedAt            string     `json:"updatedAt" db:"updated_at"`
}

// service + repo input model
type CreateRequestInput struct {
	SalespersonFirstName string // given, may be empty
	SalespersonSelection string // given, may be empty
	Status               string // should be set: "draft"
	// Id UUID sets automatically
	// RequestId ("QR-###") assigned by the store from a sequence
	// CreatedAt / UpdatedAt set automatically
}

// controller model
type RequestOutputModel struct {
	Id                   string     `json:"id"`
	RequestId            string     `json:"requestId"`
	Status               string     `json:"status"`
	SalespersonFirstName string     `json:"salespersonFirstName"`
	SalespersonSelection string     `json:"salespersonSelection"`
	Contact              *Contact   `json:"contact"`
	LineItems            []LineItem `json:"lineItems"`
	Comment              string     `json:"comment"`
	PipedriveDealId      *int       `json:"pipedriveDealId"`
	CreatedAt            string     `json:"createdAt"`
	UpdatedAt            string     `json:"updatedAt"`
}
