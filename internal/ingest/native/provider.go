// Package native ingests workout logs posted in the service's own JSON form:
//
//	{"logs": [{"exercise_name": "Bench Press", "date": "2026-03-01",
//	           "sets": [{"weight": 100, "reps": 5, "completed": true}]}]}
//
// A bare JSON array of entries is accepted as well.
package native

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/claude/musclemap/internal/ingest"
	"github.com/claude/musclemap/internal/models"
)

// Source tags entries posted through the JSON API.
const Source = "api"

// Provider validates and stores JSON workout logs.
type Provider struct {
	store ingest.Store
	log   *slog.Logger
}

// NewProvider creates a JSON ingest provider.
func NewProvider(store ingest.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Decode reads either a {"logs": [...]} batch or a bare array.
func Decode(r io.Reader) ([]models.WorkoutLogEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if trimmed[0] == '[' {
		var logs []models.WorkoutLogEntry
		if err := json.Unmarshal(trimmed, &logs); err != nil {
			return nil, fmt.Errorf("decoding log array: %w", err)
		}
		return logs, nil
	}
	var batch models.WorkoutLogBatch
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		return nil, fmt.Errorf("decoding log batch: %w", err)
	}
	return batch.Logs, nil
}

// validate reports why an entry cannot be stored, or "" if it can.
// Numbers are not checked here: the heatmap treats malformed ones as zero.
func validate(l models.WorkoutLogEntry) string {
	if strings.TrimSpace(l.ExerciseName) == "" {
		return "missing exercise_name"
	}
	if l.Date.IsZero() {
		return "missing date"
	}
	return ""
}

// Ingest decodes, validates and stores entries. Invalid entries are
// reported in the result and skipped. Entries carrying an id that already
// exists are left untouched.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	logs, err := Decode(r)
	if err != nil {
		return nil, err
	}

	result := &ingest.Result{LogsReceived: len(logs), SetsReceived: ingest.CountSets(logs)}
	valid := make([]models.WorkoutLogEntry, 0, len(logs))
	for i, l := range logs {
		if reason := validate(l); reason != "" {
			result.LogsRejected++
			result.Rejections = append(result.Rejections, fmt.Sprintf("logs[%d]: %s", i, reason))
			continue
		}
		l.ExerciseName = strings.TrimSpace(l.ExerciseName)
		l.Source = Source
		valid = append(valid, l)
	}

	if len(valid) == 0 {
		result.Message = "no valid logs"
		return result, nil
	}

	logsInserted, setsInserted, err := p.store.ReplaceWorkoutLogs(ctx, valid, nil, Source, userID)
	if err != nil {
		return nil, fmt.Errorf("storing logs: %w", err)
	}
	result.LogsInserted = logsInserted
	result.SetsInserted = setsInserted

	p.log.Info("json logs stored",
		"user_id", userID,
		"received", result.LogsReceived,
		"rejected", result.LogsRejected,
		"logs", logsInserted,
		"sets", setsInserted,
	)
	return result, nil
}
