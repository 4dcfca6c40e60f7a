package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports bad caller input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// UnauthorizedError reports a caller/entity mismatch.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

func Unauthorized(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// SelfTradeError reports a buyer attempting to purchase their own listing.
type SelfTradeError struct{}

func (e *SelfTradeError) Error() string {
	return "self-trade forbidden: buyers may not purchase their own listing"
}

// StateTransitionError reports an operation applied to an entity that is not
// in the required state. Carries the current state so the caller sees why.
type StateTransitionError struct {
	Entity  string
	Current string
	Event   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s cannot %s while in state %q", e.Entity, e.Event, e.Current)
}

// InsufficientInventoryError reports a quantity check failure. The caller may
// retry with a smaller quantity.
type InsufficientInventoryError struct {
	Requested int64
	Available int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: requested %d, available %d", e.Requested, e.Available)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// RenderError reports a certificate generation failure. Indicates a
// data-integrity problem, logged as an operational incident.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("certificate render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// SigningError reports a document signing failure.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("document signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// HTTPStatus maps a core error to the status code the HTTP surface returns.
func HTTPStatus(err error) int {
	var (
		validation   *ValidationError
		unauthorized *UnauthorizedError
		selfTrade    *SelfTradeError
		transition   *StateTransitionError
		inventory    *InsufficientInventoryError
		notFound     *NotFoundError
		render       *RenderError
		signing      *SigningError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized), errors.As(err, &selfTrade):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &transition), errors.As(err, &inventory):
		return http.StatusConflict
	case errors.As(err, &render), errors.As(err, &signing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message surfaced to the caller. Settlement
// collaborator failures are reported as retryable without internal detail.
func PublicMessage(err error) string {
	var (
		render  *RenderError
		signing *SigningError
	)
	if errors.As(err, &render) || errors.As(err, &signing) {
		return "settlement could not be completed, please try again later"
	}
	return err.Error()
}
