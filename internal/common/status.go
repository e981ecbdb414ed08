package common

// Request statuses. Lowercase on the wire and in the database.
const (
	Draft     = "draft"
	Submitted = "submitted"
	Failed    = "failed"
)

// Missing-item labels reported by submission validation. The wording is part
// of the API contract: the UI renders these verbatim inside the submit hint.
const (
	MissingContact     = "contact"
	MissingMineInfo    = "mine information"
	MissingLineItems   = "line items"
	MissingProductInfo = "valid product information"
)

func IsValidStatus(status string) bool {
	return status == Draft || status == Submitted || status == Failed
}

// IsEditable reports whether a request in the given status accepts field
// edits. Submitted requests are locked for good.
func IsEditable(status string) bool {
	return status == Draft || status == Failed
}
