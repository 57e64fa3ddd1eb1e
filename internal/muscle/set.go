package muscle

import "encoding/json"

// Set is an immutable-by-value set of muscle groups backed by a bitmask.
type Set uint16

// NewSet returns a set containing the given groups. Invalid groups are ignored.
func NewSet(groups ...MuscleGroup) Set {
	var s Set
	for _, g := range groups {
		s = s.Add(g)
	}
	return s
}

// Add returns s with g included.
func (s Set) Add(g MuscleGroup) Set {
	if !g.Valid() {
		return s
	}
	return s | 1<<g
}

// Has reports whether g is in the set.
func (s Set) Has(g MuscleGroup) bool {
	return g.Valid() && s&(1<<g) != 0
}

// Union returns the groups in either set.
func (s Set) Union(o Set) Set { return s | o }

// Contains reports whether every group of o is in s.
func (s Set) Contains(o Set) bool { return s&o == o }

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return s == 0 }

// Len returns the number of groups in the set.
func (s Set) Len() int {
	n := 0
	for _, g := range All() {
		if s.Has(g) {
			n++
		}
	}
	return n
}

// Slice returns the members in canonical order.
func (s Set) Slice() []MuscleGroup {
	out := make([]MuscleGroup, 0, s.Len())
	for _, g := range All() {
		if s.Has(g) {
			out = append(out, g)
		}
	}
	return out
}

func (s Set) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}

// MarshalJSON encodes the set as an array of tags.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}
