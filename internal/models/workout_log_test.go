package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestLogDateFormats verifies both date-only and RFC 3339 inputs are accepted.
func TestLogDateFormats(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2026-02-19", time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)},
		{"2026-02-19T16:54:00Z", time.Date(2026, 2, 19, 16, 54, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var d LogDate
		if err := d.Parse(tt.input); err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if !d.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, d.Time, tt.want)
		}
	}

	var d LogDate
	if err := d.Parse("19/02/2026"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

// TestWorkoutLogEntryJSON verifies the ingest payload shape, including
// missing numeric fields decoding as zero.
func TestWorkoutLogEntryJSON(t *testing.T) {
	payload := `{"logs":[{"exercise_name":"Bench Press","date":"2026-03-01","sets":[
		{"weight":100,"reps":5,"completed":true},
		{"reps":8,"completed":true},
		{"weight":80,"reps":8}
	]}]}`

	var batch WorkoutLogBatch
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(batch.Logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(batch.Logs))
	}
	e := batch.Logs[0]
	if e.ExerciseName != "Bench Press" {
		t.Errorf("ExerciseName = %q", e.ExerciseName)
	}
	if e.Date.Format(LogDateLayout) != "2026-03-01" {
		t.Errorf("Date = %v", e.Date)
	}
	if len(e.Sets) != 3 {
		t.Fatalf("sets = %d, want 3", len(e.Sets))
	}
	if e.Sets[1].WeightKg != 0 {
		t.Errorf("missing weight = %v, want 0", e.Sets[1].WeightKg)
	}
	if e.Sets[2].Completed {
		t.Error("missing completed should decode as false")
	}

	out, err := json.Marshal(e.Date)
	if err != nil {
		t.Fatalf("marshal date: %v", err)
	}
	if string(out) != `"2026-03-01"` {
		t.Errorf("date json = %s", out)
	}
}
