package service

import (
	"context"
	"time"

	"sales-request-api/internal/entity"
	"sales-request-api/internal/lifecycle"
	"sales-request-api/internal/repo"

	"sales-request-api/internal/cache"
)

type Diagnostics interface {
	Ping() error
}

type Request interface {
	CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (*entity.RequestOutputModel, error)
	GetRequestById(ctx context.Context, requestId string) (*entity.RequestOutputModel, error)
	ListRequests(ctx context.Context, pg *entity.PaginationInput) ([]entity.RequestOutputModel, error)

	UpdateSalesperson(ctx context.Context, requestId string, firstName string, selection string) (*entity.RequestOutputModel, error)
	UpdateContact(ctx context.Context, requestId string, contact *entity.Contact) (*entity.RequestOutputModel, error)
	UpdateComment(ctx context.Context, requestId string, comment string) (*entity.RequestOutputModel, error)

	AddLineItem(ctx context.Context, requestId string, item *entity.LineItem) (*entity.RequestOutputModel, error)
	ReplaceLineItems(ctx context.Context, requestId string, items []entity.LineItem) (*entity.RequestOutputModel, error)
	RemoveLineItem(ctx context.Context, requestId string, lineItemId int) (*entity.RequestOutputModel, error)

	ValidateRequest(ctx context.Context, requestId string) (*lifecycle.Validation, error)
	SubmitRequest(ctx context.Context, requestId string) (*entity.RequestOutputModel, error)
	GetSubmissionLog(ctx context.Context, requestId string, pg *entity.PaginationInput) ([]entity.SubmissionLogOutputModel, error)

	DeleteRequest(ctx context.Context, requestId string) error
}

type Catalog interface {
	Contacts(ctx context.Context) (*entity.ContactsCatalog, error)
	Products(ctx context.Context) (*entity.ProductsCatalog, error)
	Refresh(ctx context.Context) error
}

// DatasetFetcher pulls fresh contact/product datasets from the CRM during a
// catalog refresh.
type DatasetFetcher interface {
	FetchContacts(ctx context.Context) (*entity.ContactsCatalog, error)
	FetchProducts(ctx context.Context) (*entity.ProductsCatalog, error)
}

type Services struct {
	Diagnostics Diagnostics
	Request     Request
	Catalog     Catalog
}

// Deps are the external collaborators the services are wired with.
type Deps struct {
	CRM        lifecycle.DealCreator
	Fetcher    DatasetFetcher
	Cache      cache.Cache
	CatalogTTL time.Duration
}

func NewServices(repos *repo.Repositories, deps Deps) *Services {
	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		Request:     NewRequestService(repos, deps.CRM),
		Catalog:     NewCatalogService(repos, deps.Fetcher, deps.Cache, deps.CatalogTTL),
	}
}
