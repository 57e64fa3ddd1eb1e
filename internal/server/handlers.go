package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/musclemap/internal/heatmap"
	"github.com/claude/musclemap/internal/models"
	"github.com/claude/musclemap/internal/muscle"
	"github.com/claude/musclemap/internal/storage"
)

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	days, err := s.windows.ResolveString(r.URL.Query().Get("window"))
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h, err := s.engine.Heatmap(r.Context(), uid, days)
	if err != nil {
		s.log.Error("heatmap query failed", "user_id", uid, "window_days", days, "error", err)
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.respond(w, http.StatusOK, h)
}

type previewRequest struct {
	Overrides heatmap.Intensities `json:"overrides"`
	Window    int                 `json:"window"`
}

// handlePreview renders a heatmap from overrides only. An empty body or a
// missing overrides field yields the illustrative example.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	days, err := s.windows.Resolve(req.Window)
	if err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.respond(w, http.StatusOK, s.engine.Preview(days, req.Overrides))
}

func (s *Server) handleMuscles(w http.ResponseWriter, _ *http.Request) {
	tags := make([]string, 0, muscle.Count)
	for _, g := range muscle.All() {
		tags = append(tags, g.String())
	}
	s.respond(w, http.StatusOK, tags)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "name parameter required"})
		return
	}
	s.respond(w, http.StatusOK, s.classifier.Explain(name))
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("intensity")
	if raw == "" {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "intensity parameter required"})
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "invalid intensity: " + raw})
		return
	}
	c := heatmap.ColorFor(v)
	s.respond(w, http.StatusOK, map[string]any{
		"intensity": v,
		"rgb":       c,
		"color":     c.String(),
		"hex":       c.Hex(),
	})
}

func (s *Server) handleGradient(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"inactive": heatmap.InactiveColor,
		"stops":    heatmap.GradientStops(),
	})
}

// handleLogs lists logs since an explicit date (?since=YYYY-MM-DD) or over
// a heatmap window (?window=30).
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		var d models.LogDate
		if err := d.Parse(raw); err != nil {
			s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		since = d.Time
	} else {
		days, err := s.windows.ResolveString(r.URL.Query().Get("window"))
		if err != nil {
			s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		since = heatmap.Cutoff(s.engine.Now(), days)
	}

	logs, err := s.db.QueryWorkoutLogs(r.Context(), since, uid)
	if err != nil {
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.WorkoutLogEntry{}
	}
	s.respond(w, http.StatusOK, logs)
}

func (s *Server) handleDeleteLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("date")
	if raw == "" {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": "date parameter required"})
		return
	}
	var d models.LogDate
	if err := d.Parse(raw); err != nil {
		s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	n, err := s.db.DeleteWorkoutLogs(r.Context(), d.Time, uid)
	if err != nil {
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if n > 0 {
		s.events.broadcast(uid, "logs_changed", map[string]any{"deleted": n, "date": d})
	}
	s.respond(w, http.StatusOK, map[string]any{"deleted": n})
}

// handleIngest runs an ingester and records the outcome in import_logs.
func (s *Server) handleIngest(source string, ing Ingester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := mustUserID(w, r)
		if !ok {
			return
		}
		if ing == nil {
			s.respond(w, http.StatusNotImplemented, map[string]string{"error": source + " ingest not configured"})
			return
		}

		start := time.Now()
		logID := s.startImport(r.Context(), uid, source)

		result, err := ing.Ingest(r.Context(), r.Body, uid)
		s.finishImport(logID, uid, source, result, err, time.Since(start))
		if err != nil {
			s.log.Error("ingest error", "source", source, "error", err)
			s.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		if result.LogsInserted > 0 || result.DatesReplaced > 0 {
			s.events.broadcast(uid, "logs_changed", map[string]any{"source": source, "result": result})
		}
		s.respond(w, http.StatusOK, result)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.db.GetDataStats(r.Context(), uid)
	if err != nil {
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.respond(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), uid, limit)
	if err != nil {
		s.respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	s.respond(w, http.StatusOK, logs)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.respond(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respond writes v as JSON and logs values that cannot be encoded.
func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.log.Error("encoding response", "status", status, "error", err)
	}
}

// writeJSON encodes v before writing the header, so a value that cannot be
// encoded becomes a 500 with an error body instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"encoding response"}` + "\n"))
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}
