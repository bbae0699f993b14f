package events

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/kaliweb-go/logging"
)

// Mirrors the server's routing: ordinary routes run under a request
// timeout while the stream is mounted outside of it. The stream must
// keep delivering events published after the timeout window passes.
func TestStreamOutlivesRequestTimeout(t *testing.T) {
	b := NewBroadcaster()
	h := NewHandler(b, logging.NewDefault())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(100 * time.Millisecond))
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	r.Get("/events", h.HandleStream)

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	waitForLine := func(want string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case line, open := <-lines:
				if !open {
					t.Fatalf("stream closed before %q arrived", want)
				}
				if line == want {
					return
				}
			case <-deadline:
				t.Fatalf("did not receive %q in time", want)
			}
		}
	}

	waitForLine("event: connected")

	// Let the timeout that guards the ordinary routes elapse, then
	// publish. A stream mounted under that timeout would already be
	// closed by now.
	time.Sleep(300 * time.Millisecond)
	b.Publish(Event{Name: "application.accepted", Data: `{"id":"abc"}`})
	waitForLine("event: application.accepted")
}

// httptest.ResponseRecorder offers no write-deadline control. The
// stream must still serve events and leave a trace in the log rather
// than fail.
func TestStreamWithoutDeadlineControl(t *testing.T) {
	b := NewBroadcaster()

	var logBuf bytes.Buffer
	h := NewHandler(b, logging.NewSlogLogger(slog.New(slog.NewTextHandler(&logBuf, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.HandleStream(rec, req)
	}()

	require.Eventually(t, func() bool {
		return b.SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)

	b.Publish(Event{Name: "application.submitted", Data: `{"id":"abc"}`})
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on context cancellation")
	}

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: application.submitted")
	assert.Contains(t, logBuf.String(), "could not clear write deadline")
	assert.Equal(t, 0, b.SubscriberCount())
}
