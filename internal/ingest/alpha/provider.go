package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/musclemap/internal/ingest"
	"github.com/claude/musclemap/internal/models"
)

// Source tags entries created from Alpha Progression exports.
const Source = "alpha"

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store ingest.Store
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(store ingest.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// ToLogs converts parsed sessions into one log entry per exercise per
// session. Working sets are completed; warm-up sets are not, so they never
// count toward volume. The returned dates are the distinct session days.
func ToLogs(sessions []models.AlphaSession) ([]models.WorkoutLogEntry, []time.Time) {
	var (
		logs  []models.WorkoutLogEntry
		dates []time.Time
		seen  = make(map[time.Time]bool)
	)
	for _, s := range sessions {
		day := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
		if !seen[day] {
			seen[day] = true
			dates = append(dates, day)
		}
		for _, ex := range s.Exercises {
			entry := models.WorkoutLogEntry{
				ExerciseName: ex.Name,
				Date:         models.LogDate{Time: day},
				Source:       Source,
				Sets:         make([]models.WorkoutSetRecord, 0, len(ex.Sets)),
			}
			for _, set := range ex.Sets {
				entry.Sets = append(entry.Sets, models.WorkoutSetRecord{
					WeightKg:  set.WeightKg,
					Reps:      set.Reps,
					Completed: !set.IsWarmup,
				})
			}
			logs = append(logs, entry)
		}
	}
	return logs, dates
}

// Ingest parses a CSV export and stores its log entries, replacing any
// earlier import of the same session days.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	logs, dates := ToLogs(sessions)
	result := &ingest.Result{
		LogsReceived:  len(logs),
		SetsReceived:  ingest.CountSets(logs),
		DatesReplaced: len(dates),
	}
	if len(dates) == 0 {
		result.Message = "no sessions found"
		return result, nil
	}

	logsInserted, setsInserted, err := p.store.ReplaceWorkoutLogs(ctx, logs, dates, Source, userID)
	if err != nil {
		return nil, fmt.Errorf("storing logs: %w", err)
	}
	result.LogsInserted = logsInserted
	result.SetsInserted = setsInserted

	p.log.Info("alpha import stored",
		"user_id", userID,
		"sessions", len(sessions),
		"logs", logsInserted,
		"sets", setsInserted,
	)
	return result, nil
}
