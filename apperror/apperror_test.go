package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("bad input", nil), http.StatusBadRequest},
		{"conflict", NewConflictError("exists", nil), http.StatusConflict},
		{"not found", NewNotFoundError("missing", nil), http.StatusNotFound},
		{"auth", NewAuthError("who are you", nil), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("not yours", nil), http.StatusForbidden},
		{"database", NewDatabaseError("down", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("oops", nil), http.StatusInternalServerError},
		{"unknown", NewAppError(UnknownError, "??", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.StatusCode())
		})
	}
}

func TestAuthAndForbiddenAreDistinct(t *testing.T) {
	t.Parallel()

	authErr := NewAuthError("no token", nil)
	forbErr := NewForbiddenError("admin access required", nil)

	assert.True(t, IsAuthError(authErr))
	assert.False(t, IsForbidden(authErr))
	assert.True(t, IsForbidden(forbErr))
	assert.False(t, IsAuthError(forbErr))
	assert.NotEqual(t, authErr.StatusCode(), forbErr.StatusCode())
}

func TestUnwrapAndFromError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	dbErr := NewDatabaseError("failed to load user", cause)

	require.ErrorIs(t, dbErr, cause)
	assert.Equal(t, "failed to load user: connection refused", dbErr.Error())

	wrapped := fmt.Errorf("handler: %w", dbErr)
	got, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, DatabaseError, got.Type)

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestToResponseHidesUnderlyingError(t *testing.T) {
	t.Parallel()

	err := NewInternalError("something went wrong", errors.New("secret detail"))
	resp := err.ToResponse()
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "something went wrong", resp.Message)
	assert.NotContains(t, resp.Message, "secret")
}
