// Package lifecycle owns the request status state machine: whether a request
// may be submitted, and what a submit attempt against the CRM decided. It
// never touches storage; persisting the resulting transition is the caller's
// job, which keeps everything here pure.
package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"sales-request-api/internal/common"
	"sales-request-api/internal/entity"
)

// Validation is the result of the submittability check.
type Validation struct {
	Submittable bool     `json:"submittable"`
	Missing     []string `json:"missing"`
	Message     string   `json:"message"`
}

// DealCreator is the CRM collaborator. It receives only the contact and the
// line items; comments and internal ids stay on our side.
type DealCreator interface {
	CreateDeal(ctx context.Context, contact *entity.Contact, items []entity.LineItem) (int, error)
}

type Manager struct {
	crm DealCreator
}

func NewManager(crm DealCreator) *Manager {
	return &Manager{crm: crm}
}

// ValidateForSubmission computes what a request still lacks before it can be
// submitted. Checks run in a fixed order so the reported message is stable.
// Pure function.
func ValidateForSubmission(r *entity.Request) Validation {
	missing := make([]string, 0)

	if r.Contact == nil {
		missing = append(missing, common.MissingContact)
	} else if r.Contact.MineGroup == "" || r.Contact.MineName == "" {
		missing = append(missing, common.MissingMineInfo)
	}

	if len(r.LineItems) == 0 {
		missing = append(missing, common.MissingLineItems)
	} else {
		for i := range r.LineItems {
			li := &r.LineItems[i]
			if li.ProductId <= 0 || li.Name == "" || li.Quantity < 1 {
				missing = append(missing, common.MissingProductInfo)
				break
			}
		}
	}

	return Validation{
		Submittable: len(missing) == 0 && r.Status == common.Draft,
		Missing:     missing,
		Message:     submitMessage(missing, r.Status),
	}
}

func submitMessage(missing []string, status string) string {
	if len(missing) == 0 {
		if status != common.Draft {
			return fmt.Sprintf("Cannot submit %s request", status)
		}

		return ""
	}

	switch len(missing) {
	case 1:
		return fmt.Sprintf("Add %s to submit", missing[0])
	case 2:
		return fmt.Sprintf("Add %s and %s to submit", missing[0], missing[1])
	default:
		head := strings.Join(missing[:len(missing)-1], ", ")
		return fmt.Sprintf("Add %s, and %s to submit", head, missing[len(missing)-1])
	}
}

// Submit attempts deal creation for the request. Callers are expected to have
// confirmed submittability already; the check is repeated here so a stale or
// concurrent caller fails fast with a validation error instead of reaching
// the CRM. A failed request with nothing missing is allowed through: that is
// the failed -> submitted retry transition.
//
// On success the returned deal id must be persisted by the caller together
// with status "submitted"; on a CRM error the caller persists "failed".
func (m *Manager) Submit(ctx context.Context, r *entity.Request) (int, error) {
	v := ValidateForSubmission(r)
	retryAfterFailure := r.Status == common.Failed && len(v.Missing) == 0
	if !v.Submittable && !retryAfterFailure {
		return 0, &SubmitError{
			Kind:      KindValidation,
			Retryable: false,
			Message:   v.Message,
		}
	}

	dealId, err := m.crm.CreateDeal(ctx, r.Contact, r.LineItems)
	if err != nil {
		return 0, err
	}

	return dealId, nil
}
