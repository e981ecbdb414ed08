package repo

import (
	"context"

	"github.com/google/uuid"

	"sales-request-api/internal/entity"
	"sales-request-api/internal/repo/pgdb"
	"sales-request-api/pkg/postgres"
)

type Diagnostics interface {
	Ping() error
}

type Request interface {
	CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (uuid.UUID, error)
	GetRequestById(ctx context.Context, id string) (*entity.Request, error)
	ListRequests(ctx context.Context, pg *entity.PaginationInput) ([]entity.Request, error)

	UpdateSalesperson(ctx context.Context, id string, firstName string, selection string) error
	UpdateContact(ctx context.Context, id string, contact *entity.Contact) error
	UpdateComment(ctx context.Context, id string, comment string) error

	AddLineItem(ctx context.Context, id string, item *entity.LineItem) (int, error)
	ReplaceLineItems(ctx context.Context, id string, items []entity.LineItem) error
	RemoveLineItem(ctx context.Context, id string, lineItemId int) error

	MarkSubmitted(ctx context.Context, id string, dealId int) error
	MarkFailed(ctx context.Context, id string) error

	DeleteRequest(ctx context.Context, id string) error
}

type KVCache interface {
	GetEntry(ctx context.Context, key string) (*entity.KVEntry, error)
	PutEntry(ctx context.Context, key string, payload []byte) error
}

type SubmissionLog interface {
	AppendSubmission(ctx context.Context, entry *entity.SubmissionLogEntry) error
	GetSubmissionsByRequestId(ctx context.Context, requestId string, pg *entity.PaginationInput) ([]entity.SubmissionLogEntry, error)
}

type Repositories struct {
	Diagnostics
	Request
	KVCache
	SubmissionLog
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics:   pgdb.NewDiagnosticsRepo(p),
		Request:       pgdb.NewRequestRepo(p),
		KVCache:       pgdb.NewKVCacheRepo(p),
		SubmissionLog: pgdb.NewSubmissionLogRepo(p),
	}
}
