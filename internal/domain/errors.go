package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrDuplicateTier      = errors.New("duplicate pricing tier minimum quantity")
	ErrIllegalTransition  = errors.New("illegal order status transition")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailTaken         = errors.New("email already taken")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrPaymentNotCaptured = errors.New("payment not captured")
	ErrPaymentMismatch    = errors.New("captured amount does not match order total")
	ErrSubscriptionGone   = errors.New("push subscription gone")
	ErrPaymentMethod      = errors.New("operation not valid for payment method")
)

// ValidationError carries field-level messages for the caller.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }
