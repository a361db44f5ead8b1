package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsPermission(Permission("DENIED", "no")))
	assert.True(t, IsAuthentication(Authentication("AUTH_REQUIRED", "no session")))
	assert.True(t, IsValidation(Validation("MISSING_TITLE", "title is required")))
	assert.True(t, IsNotFound(NotFound("GONE", "nothing here")))
	assert.True(t, IsInvalidTransition(InvalidTransition("ALREADY_DECIDED", "too late")))

	assert.False(t, IsPermission(Validation("X", "y")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsValidation(nil))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NotFound("REQUEST_NOT_FOUND", "approval request 7 not found")
	wrapped := fmt.Errorf("deciding request: %w", inner)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsPermission(wrapped))
	assert.Equal(t, http.StatusNotFound, StatusOf(wrapped))
	assert.Equal(t, "REQUEST_NOT_FOUND", CodeOf(wrapped))
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, Permission("", "").Status())
	assert.Equal(t, http.StatusUnauthorized, Authentication("", "").Status())
	assert.Equal(t, http.StatusBadRequest, Validation("", "").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("", "").Status())
	assert.Equal(t, http.StatusConflict, InvalidTransition("", "").Status())

	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.Equal(t, "INTERNAL", CodeOf(errors.New("boom")))
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := Permission("SELF_APPROVAL_DENIED", "requester and approver must differ")
	assert.True(t, errors.Is(err, Permission("", "")))
	assert.False(t, errors.Is(err, Validation("", "")))
}

func TestMessageFormatting(t *testing.T) {
	err := Validation("INSUFFICIENT_STOCK", "item %s has %.2f in stock", "NPK", 12.5)
	assert.Equal(t, "item NPK has 12.50 in stock", err.Error())

	cause := errors.New("connection reset")
	withCause := &Error{Kind: KindNotFound, Code: "LOOKUP_FAILED", Message: "lookup failed", Err: cause}
	assert.Equal(t, "lookup failed: connection reset", withCause.Error())
	assert.Equal(t, cause, errors.Unwrap(withCause))
}
