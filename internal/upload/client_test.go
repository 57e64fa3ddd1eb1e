package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/musclemap/internal/ingest"
)

func newTestClient(url string) *Client {
	c := NewClient(url+"/", "k3y")
	c.backoff = time.Millisecond
	return c
}

func TestClientSendAlpha(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ingest/alpha" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "k3y" {
			t.Errorf("X-API-Key = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "text/csv" {
			t.Errorf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "csv-body" {
			t.Errorf("body = %q", body)
		}
		w.Write([]byte(`{"logs_received":6,"logs_inserted":6,"sets_received":20,"sets_inserted":20}`))
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).Send(context.Background(), ingest.FormatAlphaCSV, []byte("csv-body"))
	if err != nil {
		t.Fatal(err)
	}
	if res.LogsInserted != 6 || res.SetsInserted != 20 {
		t.Errorf("result = %+v", res)
	}
}

func TestClientSendJSONPath(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ingest/logs" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"logs_received":1}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).Send(context.Background(), ingest.FormatJSON, []byte("[]")); err != nil {
		t.Fatal(err)
	}
}

// TestClientRetriesServerErrors verifies 5xx responses are retried.
func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"logs_inserted":1}`))
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).Send(context.Background(), ingest.FormatAlphaCSV, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if res.LogsInserted != 1 {
		t.Errorf("result = %+v", res)
	}
}

// TestClientDoesNotRetryClientErrors verifies a 400 fails immediately.
func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"parsing CSV: bad header"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Send(context.Background(), ingest.FormatAlphaCSV, []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClientGivesUp(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).Send(context.Background(), ingest.FormatJSON, []byte("[]")); err == nil {
		t.Fatal("expected error after retries")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientUnsupportedFormat(t *testing.T) {
	if _, err := NewClient("http://unused", "").Send(context.Background(), "xml", nil); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
