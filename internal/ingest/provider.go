// Package ingest turns external workout exports into stored workout logs.
package ingest

import (
	"context"
	"time"

	"github.com/claude/musclemap/internal/models"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	LogsReceived  int      `json:"logs_received"`
	LogsInserted  int64    `json:"logs_inserted"`
	LogsRejected  int      `json:"logs_rejected,omitempty"`
	Rejections    []string `json:"rejections,omitempty"`
	SetsReceived  int      `json:"sets_received"`
	SetsInserted  int64    `json:"sets_inserted"`
	DatesReplaced int      `json:"dates_replaced,omitempty"`

	Message string `json:"message,omitempty"`
}

// Store persists workout logs. ReplaceWorkoutLogs deletes the user's entries
// from source on each date before inserting logs, atomically.
type Store interface {
	ReplaceWorkoutLogs(ctx context.Context, logs []models.WorkoutLogEntry, dates []time.Time, source string, userID int) (int64, int64, error)
}

// CountSets returns the total number of sets across logs.
func CountSets(logs []models.WorkoutLogEntry) int {
	n := 0
	for _, l := range logs {
		n += len(l.Sets)
	}
	return n
}
