package service

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/store"
)

var (
	ErrMissingCart        = errors.New("no cart")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingProduct     = errors.New("product_id required")
	ErrNotFound           = errors.New("not found")
	ErrCheckoutInProgress = errors.New("checkout already in progress for this cart")
)

// ValidationError reports caller-supplied fields that are missing or malformed
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

func newValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// translateStoreErr maps a store miss onto the service taxonomy
func translateStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
