package muscle

import (
	"fmt"
	"strings"
)

// MuscleGroup is one of the fixed anatomical tags used for classification
// and visualization. The zero value is not a valid group.
type MuscleGroup uint8

const (
	Chest MuscleGroup = iota + 1
	Shoulders
	Biceps
	Triceps
	Forearms
	Abs
	Obliques
	Quads
	Hamstrings
	Glutes
	Calves
	UpperBack
	Lats
	LowerBack
)

// Count is the number of muscle groups.
const Count = 14

var names = [Count + 1]string{
	"",
	"chest",
	"shoulders",
	"biceps",
	"triceps",
	"forearms",
	"abs",
	"obliques",
	"quads",
	"hamstrings",
	"glutes",
	"calves",
	"upper_back",
	"lats",
	"lower_back",
}

var byName = func() map[string]MuscleGroup {
	m := make(map[string]MuscleGroup, Count)
	for i := 1; i <= Count; i++ {
		m[names[i]] = MuscleGroup(i)
	}
	return m
}()

// All returns every muscle group in canonical order.
func All() []MuscleGroup {
	all := make([]MuscleGroup, 0, Count)
	for i := 1; i <= Count; i++ {
		all = append(all, MuscleGroup(i))
	}
	return all
}

// Valid reports whether m is one of the 14 defined groups.
func (m MuscleGroup) Valid() bool {
	return m >= Chest && m <= LowerBack
}

func (m MuscleGroup) String() string {
	if !m.Valid() {
		return fmt.Sprintf("MuscleGroup(%d)", uint8(m))
	}
	return names[m]
}

// Parse returns the muscle group for a tag such as "upper_back".
// Matching is case-insensitive; unknown tags are an error.
func Parse(s string) (MuscleGroup, error) {
	if m, ok := byName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown muscle group %q", s)
}

// MarshalText implements encoding.TextMarshaler so muscle groups serialize
// as their tag, including when used as JSON map keys.
func (m MuscleGroup) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid muscle group %d", uint8(m))
	}
	return []byte(names[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MuscleGroup) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
