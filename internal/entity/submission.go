package entity

import "github.com/google/uuid"

// SubmissionLogEntry records one submit attempt against the CRM.
type SubmissionLogEntry struct {
	Id        int       `db:"id"`
	RequestId uuid.UUID `db:"request_id"`
	Outcome   string    `db:"outcome"` // "success" or "failed"
	DealId    *int      `db:"deal_id"`
	ErrorKind string    `db:"error_kind"`
	Message   string    `db:"message"`
	CreatedAt string    `db:"created_at"`
}

type SubmissionLogOutputModel struct {
	Outcome   string `json:"outcome"`
	DealId    *int   `json:"dealId,omitempty"`
	ErrorKind string `json:"errorKind,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"createdAt"`
}
