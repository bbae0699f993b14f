package contact

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/logging"
)

func TestSubmitValidation(t *testing.T) {
	// Validation rejects the request before any query runs, so no pool is
	// needed here.
	svc := NewService(nil, logging.NewDefault())

	cases := map[string]SubmitRequest{
		"empty":           {},
		"missing message": {Name: "Ada", Email: "a@x.com"},
		"bad email":       {Name: "Ada", Email: "not-an-email", Message: "hello"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.ValidationError, appErr.Type)
		})
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(nil, logging.NewDefault())

	bogus := "escalated"
	_, err := svc.Update(context.Background(), uuid.Nil, UpdateRequest{Status: &bogus})
	require.Error(t, err)
	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.ValidationError, appErr.Type)
}
