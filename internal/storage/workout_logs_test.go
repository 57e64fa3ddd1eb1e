package storage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/claude/musclemap/internal/models"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		rows, cols int
		want       string
	}{
		{1, 1, "($1)"},
		{1, 3, "($1,$2,$3)"},
		{2, 2, "($1,$2),($3,$4)"},
		{3, 5, "($1,$2,$3,$4,$5),($6,$7,$8,$9,$10),($11,$12,$13,$14,$15)"},
		{0, 5, ""},
	}
	for _, tt := range tests {
		if got := placeholders(tt.rows, tt.cols); got != tt.want {
			t.Errorf("placeholders(%d, %d) = %q, want %q", tt.rows, tt.cols, got, tt.want)
		}
	}
}

// TestLogDay verifies timestamps collapse to their UTC calendar date, so a
// late-evening session in a positive offset lands on the UTC day.
func TestLogDay(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 2, 19, 16, 54, 0, 0, time.UTC), "2026-02-19"},
		{time.Date(2026, 2, 19, 0, 30, 0, 0, berlin), "2026-02-18"},
		{time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC), "2026-02-19"},
	}
	for _, tt := range tests {
		got := LogDay(tt.in)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("LogDay(%v) = %v, want %s", tt.in, got, tt.want)
		}
		if got.Location() != time.UTC || got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("LogDay(%v) = %v, want UTC midnight", tt.in, got)
		}
	}
}

// TestLogVersion verifies the version token changes with either the entry
// count or the latest update time.
func TestLogVersion(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Millisecond)

	if got := logVersion(0, nil); got != "0" {
		t.Errorf("logVersion(0, nil) = %q, want %q", got, "0")
	}
	if logVersion(3, &t1) == logVersion(4, &t1) {
		t.Error("version should change with count")
	}
	if logVersion(3, &t1) == logVersion(3, &t2) {
		t.Error("version should change with updated_at")
	}
	if logVersion(3, &t1) != logVersion(3, &t1) {
		t.Error("version should be stable")
	}
}

// TestSetRowsSkipsExistingEntries verifies sets are written only for entries
// whose row was just inserted, so re-posting a known id with more sets does
// not grow the stored entry.
func TestSetRowsSkipsExistingEntries(t *testing.T) {
	fresh := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	existing := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	logs := []models.WorkoutLogEntry{
		{ID: existing, ExerciseName: "Bench Press", Sets: []models.WorkoutSetRecord{
			{WeightKg: 100, Reps: 5, Completed: true},
			{WeightKg: 100, Reps: 5, Completed: true},
			{WeightKg: 90, Reps: 8, Completed: true},
		}},
		{ID: fresh, ExerciseName: "Squat", Sets: []models.WorkoutSetRecord{
			{WeightKg: 140, Reps: 5, Completed: true},
		}},
		{ID: fresh, ExerciseName: "Squat", Sets: []models.WorkoutSetRecord{
			{WeightKg: 20, Reps: 10, Completed: false},
		}},
	}

	got := setRows(logs, map[uuid.UUID]bool{fresh: true})
	want := []any{fresh, 1, 140.0, 5, true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("setRows mismatch (-want +got):\n%s", diff)
	}

	if got := setRows(logs, map[uuid.UUID]bool{}); len(got) != 0 {
		t.Errorf("setRows with nothing inserted = %v, want empty", got)
	}
}
