package service

import "errors"

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrLineItemNotFound = errors.New("line item not found")

	ErrRequestSubmitted = errors.New("submitted requests can no longer be edited")
	ErrRequestNotDraft  = errors.New("only draft requests can be deleted")

	ErrCatalogNotLoaded = errors.New("catalog dataset has not been loaded yet")
)
