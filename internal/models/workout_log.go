package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogDate is the calendar date of a workout log entry. It accepts
// "2006-01-02" as well as full RFC 3339 timestamps and always encodes as
// the date-only form.
type LogDate struct {
	time.Time
}

const LogDateLayout = "2006-01-02"

func (d *LogDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Parse(s)
}

func (d LogDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(LogDateLayout))
}

// Parse parses a date-only string first, then RFC 3339.
func (d *LogDate) Parse(s string) error {
	parsed, err := time.Parse(LogDateLayout, s)
	if err == nil {
		d.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(time.RFC3339, s)
	if err2 == nil {
		d.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse log date %q: %w", s, err)
}

// WorkoutSetRecord is one logged set. Only completed sets count toward volume.
type WorkoutSetRecord struct {
	WeightKg  float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

// WorkoutLogEntry is one exercise performed on one day with its sets.
// Entries are owned by the storage layer; the heatmap engine only reads them.
type WorkoutLogEntry struct {
	ID           uuid.UUID          `json:"id"`
	UserID       int                `json:"-"`
	ExerciseName string             `json:"exercise_name"`
	Date         LogDate            `json:"date"`
	Source       string             `json:"source,omitempty"`
	Sets         []WorkoutSetRecord `json:"sets"`
}

// WorkoutLogBatch is the JSON ingest payload for workout logs.
type WorkoutLogBatch struct {
	Logs []WorkoutLogEntry `json:"logs"`
}
