package service

import (
	"sales-request-api/internal/entity"
)

func mapRequest(r *entity.Request) *entity.RequestOutputModel {
	return &entity.RequestOutputModel{
		Id:                   r.Id.String(),
		RequestId:            r.RequestId,
		Status:               r.Status,
		SalespersonFirstName: r.SalespersonFirstName,
		SalespersonSelection: r.SalespersonSelection,
		Contact:              r.Contact,
		LineItems:            r.LineItems,
		Comment:              r.Comment,
		PipedriveDealId:      r.PipedriveDealId,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func mapRequests(requests []entity.Request) []entity.RequestOutputModel {
	s := make([]entity.RequestOutputModel, 0)
	for _, request := range requests {
		s = append(s, *mapRequest(&request))
	}

	return s
}

func mapSubmission(e *entity.SubmissionLogEntry) *entity.SubmissionLogOutputModel {
	return &entity.SubmissionLogOutputModel{
		Outcome:   e.Outcome,
		DealId:    e.DealId,
		ErrorKind: e.ErrorKind,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}

func mapSubmissions(entries []entity.SubmissionLogEntry) []entity.SubmissionLogOutputModel {
	s := make([]entity.SubmissionLogOutputModel, 0)
	for i := range entries {
		s = append(s, *mapSubmission(&entries[i]))
	}

	return s
}
