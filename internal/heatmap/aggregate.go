package heatmap

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/claude/musclemap/internal/classify"
	"github.com/claude/musclemap/internal/models"
	"github.com/claude/musclemap/internal/muscle"
)

// MuscleStat is the training volume and frequency for one muscle group.
// Frequency counts contributing log entries, not sets.
type MuscleStat struct {
	Muscle    muscle.MuscleGroup `json:"muscle"`
	Volume    float64            `json:"volume"`
	Frequency int                `json:"frequency"`
}

// Stats maps every muscle group to its statistic.
type Stats map[muscle.MuscleGroup]MuscleStat

// EmptyStats returns stats with all 14 groups at zero.
func EmptyStats() Stats {
	s := make(Stats, muscle.Count)
	for _, g := range muscle.All() {
		s[g] = MuscleStat{Muscle: g}
	}
	return s
}

// Cutoff returns the earliest instant a log date may have to fall inside
// the window ending at now.
func Cutoff(now time.Time, windowDays int) time.Time {
	return now.AddDate(0, 0, -windowDays)
}

// Aggregate folds the logs dated on or after now minus windowDays through
// the default classifier into per-muscle statistics.
func Aggregate(logs []models.WorkoutLogEntry, windowDays int, now time.Time) Stats {
	return AggregateWith(classify.Default(), logs, windowDays, now)
}

// AggregateWith is Aggregate with an explicit classifier.
func AggregateWith(c *classify.Classifier, logs []models.WorkoutLogEntry, windowDays int, now time.Time) Stats {
	stats := EmptyStats()
	cutoff := Cutoff(now, windowDays)

	for _, log := range logs {
		if log.Date.Before(cutoff) {
			continue
		}
		volume := LogVolume(log.Sets)
		for _, g := range c.Classify(log.ExerciseName).Slice() {
			st := stats[g]
			st.Volume = addVolume(st.Volume, volume)
			st.Frequency++
			stats[g] = st
		}
	}
	return stats
}

// Contribution is one exercise's share of a muscle's volume.
type Contribution struct {
	Exercise string  `json:"exercise"`
	Volume   float64 `json:"volume"`
	Entries  int     `json:"entries"`
}

// Contributions breaks each muscle's windowed volume down by exercise name,
// largest first. Names are compared after trimming and case folding; the
// first spelling seen is reported.
func Contributions(c *classify.Classifier, logs []models.WorkoutLogEntry, windowDays int, now time.Time) map[muscle.MuscleGroup][]Contribution {
	type key struct {
		g    muscle.MuscleGroup
		name string
	}
	cutoff := Cutoff(now, windowDays)
	acc := make(map[key]*Contribution)
	out := make(map[muscle.MuscleGroup][]Contribution)

	for _, log := range logs {
		if log.Date.Before(cutoff) {
			continue
		}
		name := strings.TrimSpace(log.ExerciseName)
		volume := LogVolume(log.Sets)
		for _, g := range c.Classify(name).Slice() {
			k := key{g, strings.ToLower(name)}
			ct, ok := acc[k]
			if !ok {
				ct = &Contribution{Exercise: name}
				acc[k] = ct
			}
			ct.Volume = addVolume(ct.Volume, volume)
			ct.Entries++
		}
	}
	for k, ct := range acc {
		out[k.g] = append(out[k.g], *ct)
	}
	for g := range out {
		slices.SortFunc(out[g], func(a, b Contribution) int {
			if d := cmp.Compare(b.Volume, a.Volume); d != 0 {
				return d
			}
			return cmp.Compare(a.Exercise, b.Exercise)
		})
	}
	return out
}

// LogVolume sums weight×reps over completed sets. Negative or non-finite
// weights and negative reps count as zero. Sums saturate at
// math.MaxFloat64 so the result is always finite.
func LogVolume(sets []models.WorkoutSetRecord) float64 {
	var total float64
	for _, s := range sets {
		if !s.Completed {
			continue
		}
		total = addVolume(total, clampNonNegative(s.WeightKg)*float64(max(s.Reps, 0)))
	}
	return total
}

// addVolume adds two non-negative volumes, saturating at math.MaxFloat64.
func addVolume(a, b float64) float64 {
	sum := a + b
	if math.IsInf(sum, 1) || math.IsNaN(sum) {
		return math.MaxFloat64
	}
	return sum
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
