package entity

import (
	"fmt"

	"sales-request-api/internal/common"
)

// ShapeError reports a value that fails its structural invariants before it
// reaches the lifecycle manager. It is a data-integrity error and is never
// silently coerced away.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (c *Contact) Validate() error {
	if c.PersonId <= 0 {
		return &ShapeError{Field: "contact.personId", Reason: "must be a positive identifier"}
	}
	if c.Name == "" {
		return &ShapeError{Field: "contact.name", Reason: "must not be empty"}
	}
	if c.MineGroup == "" {
		return &ShapeError{Field: "contact.mineGroup", Reason: "must be set whenever a contact is present"}
	}
	if c.MineName == "" {
		return &ShapeError{Field: "contact.mineName", Reason: "must be set whenever a contact is present"}
	}

	return nil
}

func (li *LineItem) Validate() error {
	if li.ProductId <= 0 {
		return &ShapeError{Field: "lineItem.productId", Reason: "must be a positive identifier"}
	}
	if li.Name == "" {
		return &ShapeError{Field: "lineItem.name", Reason: "must not be empty"}
	}
	if li.Quantity < 1 {
		return &ShapeError{Field: "lineItem.quantity", Reason: "must be at least 1"}
	}
	if li.UnitPrice < 0 {
		return &ShapeError{Field: "lineItem.unitPrice", Reason: "must not be negative"}
	}
	if li.TotalPrice < 0 {
		return &ShapeError{Field: "lineItem.totalPrice", Reason: "must not be negative"}
	}

	return nil
}

// Validate checks the whole request against its structural invariants,
// including the status/deal-id pairing.
func (r *Request) Validate() error {
	if !common.IsValidStatus(r.Status) {
		return &ShapeError{Field: "request.status", Reason: "unknown status " + r.Status}
	}
	if r.Status == common.Submitted && r.PipedriveDealId == nil {
		return &ShapeError{Field: "request.pipedriveDealId", Reason: "submitted request must carry a deal id"}
	}
	if r.Status != common.Submitted && r.PipedriveDealId != nil {
		return &ShapeError{Field: "request.pipedriveDealId", Reason: "only submitted requests may carry a deal id"}
	}
	if r.Contact != nil {
		if err := r.Contact.Validate(); err != nil {
			return err
		}
	}
	for i := range r.LineItems {
		if err := r.LineItems[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}
