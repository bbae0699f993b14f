package team

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/kaliweb-go/apperror"
	"github.com/user/kaliweb-go/logging"
)

func TestCreateRequiresNameAndRole(t *testing.T) {
	// Validation rejects the request before any query runs, so no pool is
	// needed here.
	svc := NewService(nil, logging.NewDefault())

	cases := []CreateRequest{
		{},
		{Name: "Ada"},
		{Role: "Lead"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		appErr, ok := apperror.FromError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.ValidationError, appErr.Type)
	}
}
