package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"sales-request-api/internal/common"
	"sales-request-api/internal/entity"
	"sales-request-api/internal/lifecycle"
	"sales-request-api/internal/repo"
	"sales-request-api/internal/repo/repo_errors"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

type RequestService struct {
	requestRepo repo.Request
	logRepo     repo.SubmissionLog
	manager     *lifecycle.Manager
}

func NewRequestService(repos *repo.Repositories, crm lifecycle.DealCreator) *RequestService {
	return &RequestService{
		requestRepo: repos.Request,
		logRepo:     repos.SubmissionLog,
		manager:     lifecycle.NewManager(crm),
	}
}

func (s *RequestService) CreateRequest(ctx context.Context, input *entity.CreateRequestInput) (*entity.RequestOutputModel, error) {
	input.Status = common.Draft

	id, err := s.requestRepo.CreateRequest(ctx, input)
	if err != nil {
		return nil, err
	}

	request, err := s.requestRepo.GetRequestById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	return mapRequest(request), nil
}

func (s *RequestService) GetRequestById(ctx context.Context, requestId string) (*entity.RequestOutputModel, error) {
	request, err := s.getRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}

	return mapRequest(request), nil
}

func (s *RequestService) ListRequests(ctx context.Context, pg *entity.PaginationInput) ([]entity.RequestOutputModel, error) {
	requests, err := s.requestRepo.ListRequests(ctx, pg)
	if err != nil {
		return nil, err
	}

	return mapRequests(requests), nil
}

// Salesperson edits go through the same status guard as every other field:
// once submitted, nothing on the request changes anymore, including the
// salesperson dropdown.
func (s *RequestService) UpdateSalesperson(ctx context.Context, requestId string, firstName string, selection string) (*entity.RequestOutputModel, error) {
	if _, err := s.getEditableRequest(ctx, requestId); err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateSalesperson(ctx, requestId, firstName, selection); err != nil {
		return nil, err
	}

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) UpdateContact(ctx context.Context, requestId string, contact *entity.Contact) (*entity.RequestOutputModel, error) {
	if contact != nil {
		if err := contact.Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := s.getEditableRequest(ctx, requestId); err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateContact(ctx, requestId, contact); err != nil {
		return nil, err
	}

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) UpdateComment(ctx context.Context, requestId string, comment string) (*entity.RequestOutputModel, error) {
	if _, err := s.getEditableRequest(ctx, requestId); err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateComment(ctx, requestId, comment); err != nil {
		return nil, err
	}

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) AddLineItem(ctx context.Context, requestId string, item *entity.LineItem) (*entity.RequestOutputModel, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.getEditableRequest(ctx, requestId); err != nil {
		return nil, err
	}

	if _, err := s.requestRepo.AddLineItem(ctx, requestId, item); err != nil {
		return nil, err
	}

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) ReplaceLineItems(ctx context.Context, requestId string, items []entity.LineItem) (*entity.RequestOutputModel, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := s.getEditableRequest(ctx, requestId); err != nil {
		return nil, err
	}

	if err := s.requestRepo.ReplaceLineItems(ctx, requestId, items); err != nil {
		return nil, err
	}

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) RemoveLineItem(ctx context.Context, requestId string, lineItemId int) (*entity.RequestOutputModel, error) {
	if _, err := s.getEditableRequest(ctx, requestId); err != nil {
		return nil, err
	}

	if err := s.requestRepo.RemoveLineItem(ctx, requestId, lineItemId); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrLineItemNotFound
		}

		return nil, err
	}

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) ValidateRequest(ctx context.Context, requestId string) (*lifecycle.Validation, error) {
	request, err := s.getRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}

	v := lifecycle.ValidateForSubmission(request)

	return &v, nil
}

// SubmitRequest runs the full submit path: lifecycle decision, one CRM call,
// then the matching status transition in the store plus a submission log row.
func (s *RequestService) SubmitRequest(ctx context.Context, requestId string) (*entity.RequestOutputModel, error) {
	request, err := s.getRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}

	dealId, err := s.manager.Submit(ctx, request)
	if err != nil {
		var se *lifecycle.SubmitError
		if errors.As(err, &se) && se.Kind == lifecycle.KindValidation {
			// The CRM was never contacted, so the request keeps its status.
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"requestId": request.RequestId,
			"retryable": lifecycle.Retryable(err),
		}).Warn("CRM deal creation failed")

		if markErr := s.requestRepo.MarkFailed(ctx, requestId); markErr != nil {
			logrus.WithField("requestId", request.RequestId).
				WithError(markErr).Error("Failed to persist failed status")
		}
		s.appendLog(ctx, request, outcomeFailed, nil, err)

		return nil, err
	}

	if err := s.requestRepo.MarkSubmitted(ctx, requestId, dealId); err != nil {
		return nil, err
	}
	s.appendLog(ctx, request, outcomeSuccess, &dealId, nil)

	logrus.WithFields(logrus.Fields{
		"requestId": request.RequestId,
		"dealId":    dealId,
	}).Info("Request submitted")

	return s.GetRequestById(ctx, requestId)
}

func (s *RequestService) GetSubmissionLog(ctx context.Context, requestId string, pg *entity.PaginationInput) ([]entity.SubmissionLogOutputModel, error) {
	request, err := s.getRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}

	entries, err := s.logRepo.GetSubmissionsByRequestId(ctx, request.Id.String(), pg)
	if err != nil {
		return nil, err
	}

	return mapSubmissions(entries), nil
}

func (s *RequestService) DeleteRequest(ctx context.Context, requestId string) error {
	request, err := s.getRequest(ctx, requestId)
	if err != nil {
		return err
	}

	if request.Status != common.Draft {
		return ErrRequestNotDraft
	}

	return s.requestRepo.DeleteRequest(ctx, requestId)
}

func (s *RequestService) getRequest(ctx context.Context, requestId string) (*entity.Request, error) {
	request, err := s.requestRepo.GetRequestById(ctx, requestId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrRequestNotFound
		}

		return nil, err
	}

	return request, nil
}

func (s *RequestService) getEditableRequest(ctx context.Context, requestId string) (*entity.Request, error) {
	request, err := s.getRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}

	if !common.IsEditable(request.Status) {
		return nil, ErrRequestSubmitted
	}

	return request, nil
}

func (s *RequestService) appendLog(ctx context.Context, request *entity.Request, outcome string, dealId *int, submitErr error) {
	entry := &entity.SubmissionLogEntry{
		RequestId: request.Id,
		Outcome:   outcome,
		DealId:    dealId,
	}
	if submitErr != nil {
		entry.Message = submitErr.Error()
		var se *lifecycle.SubmitError
		if errors.As(submitErr, &se) {
			entry.ErrorKind = string(se.Kind)
		}
	}

	if err := s.logRepo.AppendSubmission(ctx, entry); err != nil {
		logrus.WithField("requestId", request.RequestId).
			WithError(err).Error("Failed to append submission log entry")
	}
}
