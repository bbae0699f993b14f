package auth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/kaliweb-go/logging"
)

func TestWriteJSONEncodesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, map[string]string{"id": "abc"}, "created")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "created", resp.Message)
}

// Once the status line is written nothing more can be sent to the
// client, so an encode failure must only produce a log entry.
func TestWriteJSONEncodeFailureKeepsStatus(t *testing.T) {
	var logBuf bytes.Buffer
	orig := respLog
	respLog = logging.NewSlogLogger(slog.New(slog.NewTextHandler(&logBuf, nil)))
	defer func() { respLog = orig }()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]interface{}{"ch": make(chan int)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, logBuf.String(), "failed to encode response")
}
