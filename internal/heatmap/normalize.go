package heatmap

import (
	"math"

	"github.com/claude/musclemap/internal/muscle"
)

// Intensities maps muscle groups to a visualization intensity in [0,1].
type Intensities map[muscle.MuscleGroup]float64

var exampleIntensities = Intensities{
	muscle.Chest:      0.8,
	muscle.Shoulders:  0.6,
	muscle.Biceps:     0.5,
	muscle.Triceps:    0.55,
	muscle.Forearms:   0.3,
	muscle.Abs:        0.4,
	muscle.Obliques:   0.25,
	muscle.Quads:      0.9,
	muscle.Hamstrings: 0.65,
	muscle.Glutes:     0.7,
	muscle.Calves:     0.35,
	muscle.UpperBack:  0.6,
	muscle.Lats:       0.75,
	muscle.LowerBack:  0.45,
}

// DefaultExample returns a copy of the illustrative map shown to users who
// have no logged activity yet.
func DefaultExample() Intensities {
	out := make(Intensities, len(exampleIntensities))
	for g, v := range exampleIntensities {
		out[g] = v
	}
	return out
}

// HasActivity reports whether any muscle has positive volume.
func HasActivity(stats Stats) bool {
	for _, st := range stats {
		if st.Volume > 0 {
			return true
		}
	}
	return false
}

// Normalize rescales stats into intensities. A nil overrides map means none
// was supplied. When overrides are supplied, or there is no activity, the
// overrides (or the default example) are used with every value clamped to
// [0,1]. Otherwise each volume is divided by the maximum volume, floored at 1.
// The result always holds all 14 groups. stats is not modified.
func Normalize(stats Stats, overrides Intensities) (Intensities, bool) {
	active := HasActivity(stats)
	out := make(Intensities, muscle.Count)

	if overrides != nil || !active {
		src := overrides
		if src == nil {
			src = exampleIntensities
		}
		for _, g := range muscle.All() {
			out[g] = clampUnit(src[g])
		}
		return out, active
	}

	maxVolume := 1.0
	for _, st := range stats {
		if v := finiteVolume(st.Volume); v > maxVolume {
			maxVolume = v
		}
	}
	for _, g := range muscle.All() {
		out[g] = math.Min(finiteVolume(stats[g].Volume)/maxVolume, 1)
	}
	return out, active
}

// finiteVolume maps NaN and negative volumes to 0 and +Inf to
// math.MaxFloat64.
func finiteVolume(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return clampNonNegative(v)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}
