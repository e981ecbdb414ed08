package lifecycle

import (
	"errors"
	"fmt"
)

type SubmitErrorKind string

const (
	KindValidation      SubmitErrorKind = "validation"
	KindNetwork         SubmitErrorKind = "network"
	KindTimeout         SubmitErrorKind = "timeout"
	KindRemoteRejection SubmitErrorKind = "remote_rejection"
)

// SubmitError classifies a failed submit attempt. Network and timeout
// failures are retryable; validation failures and explicit CRM rejections
// are not.
type SubmitError struct {
	Kind      SubmitErrorKind
	Retryable bool
	Message   string
	Err       error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit failed (%s): %s", e.Kind, e.Err)
	}

	return fmt.Sprintf("submit failed (%s): %s", e.Kind, e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Retryable reports whether err is a submit error the caller may retry.
func Retryable(err error) bool {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Retryable
	}

	return false
}
