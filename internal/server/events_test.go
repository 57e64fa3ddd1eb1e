package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/musclemap/internal/models"
)

func TestEventHubScopesByUser(t *testing.T) {
	h := newEventHub()
	a := h.subscribe(1)
	b := h.subscribe(2)

	h.broadcast(1, "logs_changed", map[string]int{"deleted": 3})

	select {
	case evt := <-a:
		if evt.Event != "logs_changed" || evt.Data != `{"deleted":3}` {
			t.Errorf("event = %+v", evt)
		}
	default:
		t.Fatal("user 1 subscriber got nothing")
	}
	select {
	case evt := <-b:
		t.Errorf("user 2 subscriber got %+v", evt)
	default:
	}

	h.unsubscribe(1, a)
	h.unsubscribe(2, b)
	if n := h.count(1) + h.count(2); n != 0 {
		t.Errorf("subscribers after unsubscribe = %d, want 0", n)
	}
}

// TestEventsStreamIngest verifies an SSE client sees logs_changed after an
// ingest by the same user.
func TestEventsStreamIngest(t *testing.T) {
	s := newTestServer(t, newMemStore())
	ts := httptest.NewServer(s)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(event string) {
		t.Helper()
		for lines.Scan() {
			if lines.Text() == "event: "+event {
				return
			}
		}
		t.Fatalf("stream ended before %q: %v", event, lines.Err())
	}
	waitFor("ready")

	day := time.Now().UTC().Format(models.LogDateLayout)
	body := `[{"exercise_name":"Pull-up","date":"` + day + `","sets":[{"weight":0,"reps":8,"completed":true}]}]`
	ingestReq, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/ingest/logs", strings.NewReader(body))
	ingestReq.Header.Set("X-API-Key", testAPIKey)
	ingestResp, err := http.DefaultClient.Do(ingestReq)
	if err != nil {
		t.Fatal(err)
	}
	ingestResp.Body.Close()
	if ingestResp.StatusCode != http.StatusOK {
		t.Fatalf("ingest status = %d", ingestResp.StatusCode)
	}

	waitFor("logs_changed")
}
