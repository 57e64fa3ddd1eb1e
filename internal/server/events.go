package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// logEvent tells subscribers that a user's logs changed and their heatmap
// should be refetched.
type logEvent struct {
	Event string
	Data  string
}

// eventHub fans out log change notifications to SSE subscribers per user.
type eventHub struct {
	mu   sync.Mutex
	subs map[int]map[chan logEvent]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[int]map[chan logEvent]struct{})}
}

func (h *eventHub) subscribe(userID int) chan logEvent {
	ch := make(chan logEvent, 32)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan logEvent]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

func (h *eventHub) unsubscribe(userID int, ch chan logEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[userID], ch)
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
}

func (h *eventHub) broadcast(userID int, event string, payload any) {
	evt := logEvent{Event: event, Data: mustJSON(payload)}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- evt:
		default:
			// slow subscriber, skip
		}
	}
}

func (h *eventHub) count(userID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// handleEvents streams "logs_changed" events for the caller until the
// client disconnects. A comment line is sent every keepalive interval.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.subscribe(uid)
	defer s.events.unsubscribe(uid, ch)

	fmt.Fprintf(w, "event: ready\ndata: %s\n\n", mustJSON(map[string]any{"windows": s.windows.Allowed}))
	flusher.Flush()

	keepalive := time.NewTicker(s.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Event, evt.Data)
			flusher.Flush()
		}
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{}`
	}
	return string(b)
}
