package events

import (
	"fmt"
	"net/http"
	"time"

	"github.com/user/kaliweb-go/logging"
)

// Handler serves the SSE stream for admin dashboards.
type Handler struct {
	broadcaster *Broadcaster
	log         logging.Logger
}

// NewHandler creates a Handler backed by the given broadcaster.
func NewHandler(b *Broadcaster, log logging.Logger) *Handler {
	return &Handler{broadcaster: b, log: log}
}

// HandleStream streams application events to the client as Server-Sent
// Events. The connection stays open until the client disconnects.
//
// @Summary Subscribe to application events
// @Description Server-Sent Events stream of membership application activity. Requires an admin token.
// @Tags applications
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /api/applications/events [get]
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Long-lived stream; the server's write timeout must not apply.
	// Without deadline control the stream dies at that timeout, so a
	// failure here has to be visible in the log.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Warn(r.Context(), "could not clear write deadline for event stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	// Keepalives stop proxies from timing out idle streams.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	writeEvent(w, Event{Name: "connected", Data: id})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			writeEvent(w, event)
			flusher.Flush()
		case at := <-heartbeat.C:
			writeEvent(w, Heartbeat(at))
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, event.Data)
}
