package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-request-api/internal/common"
	"sales-request-api/internal/entity"
	"sales-request-api/internal/lifecycle"
	"sales-request-api/internal/repo"
	"sales-request-api/internal/repo/repo_errors"
)

type fakeRequestRepo struct {
	requests map[string]*entity.Request
	nextCode int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entity.Request), nextCode: 1}
}

func (f *fakeRequestRepo) put(r *entity.Request) {
	f.requests[r.Id.String()] = r
}

func (f *fakeRequestRepo) get(id string) (*entity.Request, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return r, nil
}

func (f *fakeRequestRepo) CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (uuid.UUID, error) {
	id := uuid.New()
	f.requests[id.String()] = &entity.Request{
		Id:                   id,
		RequestId:            fmt.Sprintf("QR-%03d", f.nextCode),
		Status:               input.Status,
		SalespersonFirstName: input.SalespersonFirstName,
		SalespersonSelection: input.SalespersonSelection,
		LineItems:            []entity.LineItem{},
	}
	f.nextCode++

	return id, nil
}

func (f *fakeRequestRepo) GetRequestById(ctx context.Context, id string) (*entity.Request, error) {
	r, err := f.get(id)
	if err != nil {
		return nil, err
	}
	copied := *r

	return &copied, nil
}

func (f *fakeRequestRepo) ListRequests(ctx context.Context, pg *entity.PaginationInput) ([]entity.Request, error) {
	out := make([]entity.Request, 0)
	for _, r := range f.requests {
		out = append(out, *r)
	}

	return out, nil
}

func (f *fakeRequestRepo) UpdateSalesperson(ctx context.Context, id string, firstName string, selection string) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	r.SalespersonFirstName, r.SalespersonSelection = firstName, selection

	return nil
}

func (f *fakeRequestRepo) UpdateContact(ctx context.Context, id string, contact *entity.Contact) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	r.Contact = contact

	return nil
}

func (f *fakeRequestRepo) UpdateComment(ctx context.Context, id string, comment string) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	r.Comment = comment

	return nil
}

func (f *fakeRequestRepo) AddLineItem(ctx context.Context, id string, item *entity.LineItem) (int, error) {
	r, err := f.get(id)
	if err != nil {
		return 0, err
	}
	item.Id = len(r.LineItems) + 1
	r.LineItems = append(r.LineItems, *item)

	return item.Id, nil
}

func (f *fakeRequestRepo) ReplaceLineItems(ctx context.Context, id string, items []entity.LineItem) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	r.LineItems = items

	return nil
}

func (f *fakeRequestRepo) RemoveLineItem(ctx context.Context, id string, lineItemId int) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	for i := range r.LineItems {
		if r.LineItems[i].Id == lineItemId {
			r.LineItems = append(r.LineItems[:i], r.LineItems[i+1:]...)
			return nil
		}
	}

	return repo_errors.ErrNotFound
}

func (f *fakeRequestRepo) MarkSubmitted(ctx context.Context, id string, dealId int) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	if r.Status == common.Submitted {
		return repo_errors.ErrNotFound
	}
	r.Status = common.Submitted
	r.PipedriveDealId = &dealId

	return nil
}

func (f *fakeRequestRepo) MarkFailed(ctx context.Context, id string) error {
	r, err := f.get(id)
	if err != nil {
		return err
	}
	if r.Status == common.Submitted {
		return repo_errors.ErrNotFound
	}
	r.Status = common.Failed
	r.PipedriveDealId = nil

	return nil
}

func (f *fakeRequestRepo) DeleteRequest(ctx context.Context, id string) error {
	if _, err := f.get(id); err != nil {
		return err
	}
	delete(f.requests, id)

	return nil
}

type fakeSubmissionLog struct {
	entries []entity.SubmissionLogEntry
}

func (f *fakeSubmissionLog) AppendSubmission(ctx context.Context, entry *entity.SubmissionLogEntry) error {
	f.entries = append(f.entries, *entry)

	return nil
}

func (f *fakeSubmissionLog) GetSubmissionsByRequestId(ctx context.Context, requestId string, pg *entity.PaginationInput) ([]entity.SubmissionLogEntry, error) {
	return f.entries, nil
}

type stubCRM struct {
	dealId int
	err    error
	calls  int
}

func (s *stubCRM) CreateDeal(ctx context.Context, contact *entity.Contact, items []entity.LineItem) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}

	return s.dealId, nil
}

func newTestService(crm *stubCRM) (*RequestService, *fakeRequestRepo, *fakeSubmissionLog) {
	requests := newFakeRequestRepo()
	log := &fakeSubmissionLog{}
	repos := &repo.Repositories{Request: requests, SubmissionLog: log}

	return NewRequestService(repos, crm), requests, log
}

func seedDraft(requests *fakeRequestRepo) *entity.Request {
	request := &entity.Request{
		Id:        uuid.New(),
		RequestId: "QR-001",
		Status:    common.Draft,
		Contact:   &entity.Contact{PersonId: 1, Name: "A", MineGroup: "G", MineName: "M"},
		LineItems: []entity.LineItem{
			{Id: 1, ProductId: 1, Name: "P", Quantity: 1, UnitPrice: 10, TotalPrice: 10},
		},
	}
	requests.put(request)

	return request
}

func TestSubmitRequest_Success(t *testing.T) {
	crm := &stubCRM{dealId: 555}
	svc, requests, log := newTestService(crm)
	request := seedDraft(requests)

	out, err := svc.SubmitRequest(context.Background(), request.Id.String())

	require.NoError(t, err)
	assert.Equal(t, common.Submitted, out.Status)
	require.NotNil(t, out.PipedriveDealId)
	assert.Equal(t, 555, *out.PipedriveDealId)

	stored, _ := requests.get(request.Id.String())
	assert.Equal(t, common.Submitted, stored.Status)
	require.Len(t, log.entries, 1)
	assert.Equal(t, "success", log.entries[0].Outcome)
}

func TestSubmitRequest_CRMNetworkFailure(t *testing.T) {
	crm := &stubCRM{err: &lifecycle.SubmitError{Kind: lifecycle.KindNetwork, Retryable: true, Err: errors.New("connection reset")}}
	svc, requests, log := newTestService(crm)
	request := seedDraft(requests)

	_, err := svc.SubmitRequest(context.Background(), request.Id.String())

	require.Error(t, err)
	assert.True(t, lifecycle.Retryable(err))

	stored, _ := requests.get(request.Id.String())
	assert.Equal(t, common.Failed, stored.Status)
	assert.Nil(t, stored.PipedriveDealId)
	require.Len(t, log.entries, 1)
	assert.Equal(t, "failed", log.entries[0].Outcome)
	assert.Equal(t, "network", log.entries[0].ErrorKind)
}

func TestSubmitRequest_ValidationFailsFast(t *testing.T) {
	crm := &stubCRM{dealId: 555}
	svc, requests, log := newTestService(crm)
	request := seedDraft(requests)
	request.Contact = nil

	_, err := svc.SubmitRequest(context.Background(), request.Id.String())

	var se *lifecycle.SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, lifecycle.KindValidation, se.Kind)
	assert.Equal(t, 0, crm.calls)

	stored, _ := requests.get(request.Id.String())
	assert.Equal(t, common.Draft, stored.Status, "validation failures leave the status alone")
	assert.Empty(t, log.entries)
}

func TestSubmitRequest_SubmittedIsTerminal(t *testing.T) {
	crm := &stubCRM{dealId: 999}
	svc, requests, _ := newTestService(crm)
	request := seedDraft(requests)
	dealId := 42
	request.Status = common.Submitted
	request.PipedriveDealId = &dealId

	_, err := svc.SubmitRequest(context.Background(), request.Id.String())

	require.Error(t, err)
	assert.Equal(t, 0, crm.calls)

	stored, _ := requests.get(request.Id.String())
	assert.Equal(t, common.Submitted, stored.Status)
	assert.Equal(t, 42, *stored.PipedriveDealId)
}

func TestSubmitRequest_FailedTransitionsToSubmitted(t *testing.T) {
	crm := &stubCRM{dealId: 777}
	svc, requests, _ := newTestService(crm)
	request := seedDraft(requests)
	request.Status = common.Failed

	out, err := svc.SubmitRequest(context.Background(), request.Id.String())

	require.NoError(t, err)
	assert.Equal(t, common.Submitted, out.Status)
	assert.Equal(t, 777, *out.PipedriveDealId)
}

func TestUpdateContact_SubmittedRejected(t *testing.T) {
	svc, requests, _ := newTestService(&stubCRM{})
	request := seedDraft(requests)
	dealId := 42
	request.Status = common.Submitted
	request.PipedriveDealId = &dealId

	_, err := svc.UpdateContact(context.Background(), request.Id.String(),
		&entity.Contact{PersonId: 2, Name: "B", MineGroup: "G", MineName: "M"})

	assert.ErrorIs(t, err, ErrRequestSubmitted)
}

func TestUpdateSalesperson_SubmittedRejected(t *testing.T) {
	svc, requests, _ := newTestService(&stubCRM{})
	request := seedDraft(requests)
	dealId := 42
	request.Status = common.Submitted
	request.PipedriveDealId = &dealId

	_, err := svc.UpdateSalesperson(context.Background(), request.Id.String(), "James", "James")

	assert.ErrorIs(t, err, ErrRequestSubmitted)
}

func TestUpdateContact_ShapeChecked(t *testing.T) {
	svc, requests, _ := newTestService(&stubCRM{})
	request := seedDraft(requests)

	_, err := svc.UpdateContact(context.Background(), request.Id.String(),
		&entity.Contact{PersonId: 2, Name: "B", MineGroup: "G"})

	var shapeErr *entity.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestUpdateContact_FailedStillEditable(t *testing.T) {
	svc, requests, _ := newTestService(&stubCRM{})
	request := seedDraft(requests)
	request.Status = common.Failed

	out, err := svc.UpdateContact(context.Background(), request.Id.String(),
		&entity.Contact{PersonId: 2, Name: "B", MineGroup: "G", MineName: "M"})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Contact.PersonId)
	assert.Equal(t, common.Failed, out.Status, "edits never change the status")
}

func TestDeleteRequest_OnlyDraft(t *testing.T) {
	svc, requests, _ := newTestService(&stubCRM{})
	request := seedDraft(requests)
	request.Status = common.Failed

	err := svc.DeleteRequest(context.Background(), request.Id.String())

	assert.ErrorIs(t, err, ErrRequestNotDraft)

	request.Status = common.Draft
	require.NoError(t, svc.DeleteRequest(context.Background(), request.Id.String()))
	_, err = requests.get(request.Id.String())
	assert.ErrorIs(t, err, repo_errors.ErrNotFound)
}

func TestCreateRequest_StartsAsEmptyDraft(t *testing.T) {
	svc, _, _ := newTestService(&stubCRM{})

	out, err := svc.CreateRequest(context.Background(), &entity.CreateRequestInput{SalespersonFirstName: "James"})

	require.NoError(t, err)
	assert.Equal(t, common.Draft, out.Status)
	assert.Nil(t, out.Contact)
	assert.Empty(t, out.LineItems)
	assert.Nil(t, out.PipedriveDealId)
}

func TestAddLineItem_ShapeChecked(t *testing.T) {
	svc, requests, _ := newTestService(&stubCRM{})
	request := seedDraft(requests)

	_, err := svc.AddLineItem(context.Background(), request.Id.String(),
		&entity.LineItem{ProductId: 2, Name: "Q", Quantity: 0})

	var shapeErr *entity.ShapeError
	assert.ErrorAs(t, err, &shapeErr)
}
