package applications

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistrationTokenFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	token, err := NewRegistrationToken(now)
	require.NoError(t, err)

	parts := strings.Split(token, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "KALI", parts[0])

	ms, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), ms)

	assert.Regexp(t, `^[A-Z0-9]{6}$`, parts[2])
}

func TestNewRegistrationTokenIsUnpredictable(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		token, err := NewRegistrationToken(now)
		require.NoError(t, err)
		assert.False(t, seen[token], "token repeated: %s", token)
		seen[token] = true
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusAccepted))
	assert.True(t, CanTransition(StatusPending, StatusDenied))
	assert.True(t, CanTransition(StatusUnderReview, StatusInterviewScheduled))
	assert.True(t, CanTransition(StatusAccepted, StatusAccepted), "same status is a no-op")

	assert.False(t, CanTransition(StatusAccepted, StatusPending))
	assert.False(t, CanTransition(StatusDenied, StatusAccepted))
	assert.False(t, CanTransition(StatusInterviewScheduled, StatusUnderReview))
}
