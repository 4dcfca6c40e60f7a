package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{Validation("quantity", "must be positive"), http.StatusBadRequest},
		{Unauthorized("order belongs to a different seller"), http.StatusForbidden},
		{&SelfTradeError{}, http.StatusForbidden},
		{NotFound("order", "abc"), http.StatusNotFound},
		{&StateTransitionError{Entity: "order", Current: "completed", Event: "confirm"}, http.StatusConflict},
		{&InsufficientInventoryError{Requested: 10, Available: 4}, http.StatusConflict},
		{&RenderError{Err: errors.New("missing buyer")}, http.StatusBadGateway},
		{&SigningError{Err: errors.New("bad key")}, http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "error %v", tt.err)
	}
}

func TestHTTPStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("settle order: %w", &InsufficientInventoryError{Requested: 5, Available: 2})
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
}

func TestPublicMessageHidesCollaboratorDetail(t *testing.T) {
	render := &RenderError{Err: errors.New("pdf engine crashed at /var/lib/fonts")}
	signing := &SigningError{Err: errors.New("key file unreadable")}

	assert.Equal(t, "settlement could not be completed, please try again later", PublicMessage(render))
	assert.Equal(t, "settlement could not be completed, please try again later", PublicMessage(signing))
	assert.NotContains(t, PublicMessage(render), "fonts")
}

func TestPublicMessagePassesThroughDomainErrors(t *testing.T) {
	err := &InsufficientInventoryError{Requested: 10, Available: 4}
	assert.Equal(t, err.Error(), PublicMessage(err))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `validation failed on "quantity": must be positive`,
		Validation("quantity", "must be positive").Error())
	assert.Equal(t, "order abc not found", NotFound("order", "abc").Error())
	assert.Equal(t, `order cannot confirm while in state "completed"`,
		(&StateTransitionError{Entity: "order", Current: "completed", Event: "confirm"}).Error())
	assert.Equal(t, "insufficient inventory: requested 10, available 4",
		(&InsufficientInventoryError{Requested: 10, Available: 4}).Error())
}

func TestRenderErrorUnwrap(t *testing.T) {
	cause := errors.New("missing buyer")
	assert.ErrorIs(t, &RenderError{Err: cause}, cause)
	assert.ErrorIs(t, &SigningError{Err: cause}, cause)
}
