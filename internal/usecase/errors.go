package usecase

import (
	"errors"

	"arc-web/internal/cart"
	"arc-web/internal/token"
	"arc-web/pkg/utils"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrEmailNotVerified   = errors.New("email address not verified")
	ErrAccountDisabled    = errors.New("account is deactivated")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrMailDelivery       = errors.New("could not deliver email")
	ErrUserNotFound       = errors.New("user not found")

	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPaid    = errors.New("order has not been paid")
	ErrOrderNotUnpaid  = errors.New("order is not awaiting payment")
	ErrProductNotFound = errors.New("product not found")
	ErrCartEmpty       = errors.New("cart is empty")

	// Re-exported so handlers only need this package.
	ErrInvalidOrExpired = token.ErrInvalidOrExpired
	ErrKeyLimit         = cart.ErrKeyLimit
	ErrCartItemNotFound = cart.ErrItemNotFound
	ErrNotSubscription  = cart.ErrNotSubscription
	ErrInvalidDuration  = cart.ErrInvalidDuration
)

// ValidationError carries per-field messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}
