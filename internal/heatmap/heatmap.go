// Package heatmap turns workout logs into per-muscle training volume,
// normalized intensities and display colors.
//
// The pipeline is a composition of pure functions:
//
//	logs → classify → Aggregate → Normalize → ColorFor
//
// and is safe to call concurrently.
package heatmap

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/claude/musclemap/internal/classify"
	"github.com/claude/musclemap/internal/models"
	"github.com/claude/musclemap/internal/muscle"
)

// Intensity sources reported in Heatmap.Source.
const (
	SourceActivity = "activity"
	SourceOverride = "override"
	SourceExample  = "example"
)

// Query selects the window and optional overrides for Build.
type Query struct {
	WindowDays int
	Now        time.Time
	Overrides  Intensities
}

// Cell is the rendered state of one muscle group.
type Cell struct {
	Muscle    muscle.MuscleGroup `json:"muscle"`
	Volume    float64            `json:"volume"`
	Frequency int                `json:"frequency"`
	Intensity float64            `json:"intensity"`
	Color     string             `json:"color"`
	Hex       string             `json:"hex"`
}

// Heatmap is the full query result: one cell per muscle group in canonical order.
type Heatmap struct {
	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`
	HasActivity bool      `json:"has_activity"`
	Source      string    `json:"source"`
	Muscles     []Cell    `json:"muscles"`
}

// Intensity returns the intensity of g, or 0 if absent.
func (h Heatmap) Intensity(g muscle.MuscleGroup) float64 {
	for _, c := range h.Muscles {
		if c.Muscle == g {
			return c.Intensity
		}
	}
	return 0
}

// Build runs the full pipeline with the default classifier.
func Build(logs []models.WorkoutLogEntry, q Query) Heatmap {
	return BuildWith(classify.Default(), logs, q)
}

// BuildWith runs the full pipeline with an explicit classifier.
func BuildWith(c *classify.Classifier, logs []models.WorkoutLogEntry, q Query) Heatmap {
	stats := AggregateWith(c, logs, q.WindowDays, q.Now)
	intensities, active := Normalize(stats, q.Overrides)

	h := Heatmap{
		WindowDays:  q.WindowDays,
		GeneratedAt: q.Now,
		HasActivity: active,
		Source:      SourceActivity,
		Muscles:     make([]Cell, 0, muscle.Count),
	}
	switch {
	case q.Overrides != nil:
		h.Source = SourceOverride
	case !active:
		h.Source = SourceExample
	}

	for _, g := range muscle.All() {
		st := stats[g]
		in := intensities[g]
		color := ColorFor(in)
		h.Muscles = append(h.Muscles, Cell{
			Muscle:    g,
			Volume:    st.Volume,
			Frequency: st.Frequency,
			Intensity: in,
			Color:     color.String(),
			Hex:       color.Hex(),
		})
	}
	return h
}

// Fingerprint returns a stable hash of a log collection, used as its
// version when the store cannot provide one.
func Fingerprint(logs []models.WorkoutLogEntry) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, l := range logs {
		// Encoding plain structs of strings, numbers and bools cannot fail.
		_ = enc.Encode(l)
	}
	return hex.EncodeToString(h.Sum(nil))
}
