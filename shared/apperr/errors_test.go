package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		code string
	}{
		{"validation", Validation("bad"), ErrValidation, "validation_error"},
		{"not found", NotFound("gone"), ErrNotFound, "not_found"},
		{"forbidden", Forbidden("no"), ErrForbidden, "forbidden"},
		{"authentication", Authentication("who"), ErrAuthentication, "authentication_error"},
		{"insufficient funds", InsufficientFunds("broke"), ErrInsufficientFunds, "insufficient_funds"},
		{"conflict", Conflict("raced"), ErrConflict, "conflict"},
		{"persistence", Persistence("db", errors.New("boom")), ErrPersistence, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key value")
	err := fmt.Errorf("signup: %w", Persistence("Failed to create user", cause))

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to create user", Message(err, "fallback"))
}

func TestMessageFallsBackForForeignErrors(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("raw"), "fallback"))
	assert.Equal(t, "internal_error", Code(errors.New("raw")))
}
