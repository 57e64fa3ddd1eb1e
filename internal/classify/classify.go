// Package classify infers the muscle groups an exercise trains from its
// free-text name using declarative keyword tables.
package classify

import (
	"strings"

	"github.com/claude/musclemap/internal/muscle"
)

// Classifier evaluates a primary rule table, a compound-movement overlay
// table and coarse fallbacks against exercise names. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	rules     []Rule
	overlays  []Overlay
	fallbacks []Fallback
}

// New creates a Classifier from the given tables.
func New(rules []Rule, overlays []Overlay, fallbacks []Fallback) *Classifier {
	return &Classifier{rules: rules, overlays: overlays, fallbacks: fallbacks}
}

var defaultClassifier = New(primaryRules, compoundOverlays, fallbacks)

// Default returns the classifier built from the built-in tables.
func Default() *Classifier { return defaultClassifier }

// InferMuscleGroups classifies name with the default classifier.
func InferMuscleGroups(name string) muscle.Set {
	return defaultClassifier.Classify(name)
}

// Classify returns the union of muscles found by the primary rules and the
// overlays, or by the fallbacks when both found nothing. Unrecognized names
// return the empty set.
func (c *Classifier) Classify(name string) muscle.Set {
	return c.Explain(name).Muscles
}

// Hit records one table entry that fired for a name.
type Hit struct {
	Stage   string     `json:"stage"`
	Keyword string     `json:"keyword"`
	Muscles muscle.Set `json:"muscles"`
}

// Explanation is the classification result with the rules that produced it.
type Explanation struct {
	Name    string     `json:"name"`
	Muscles muscle.Set `json:"muscles"`
	Hits    []Hit      `json:"hits"`
}

const (
	StagePrimary  = "primary"
	StageOverlay  = "overlay"
	StageFallback = "fallback"
)

// Explain classifies name and reports every rule that fired.
func (c *Classifier) Explain(name string) Explanation {
	lower := strings.ToLower(strings.TrimSpace(name))
	exp := Explanation{Name: name, Hits: []Hit{}}
	if lower == "" {
		return exp
	}

	for _, r := range c.rules {
		if m, ok := anyMatch(r.Matchers, lower); ok {
			found := muscle.NewSet(r.Muscle)
			exp.Muscles = exp.Muscles.Union(found)
			exp.Hits = append(exp.Hits, Hit{Stage: StagePrimary, Keyword: m.String(), Muscles: found})
		}
	}

	for _, o := range c.overlays {
		if m, ok := anyMatch(o.Triggers, lower); ok {
			exp.Muscles = exp.Muscles.Union(o.Muscles)
			exp.Hits = append(exp.Hits, Hit{Stage: StageOverlay, Keyword: m.String(), Muscles: o.Muscles})
		}
	}

	if !exp.Muscles.Empty() {
		return exp
	}

	for _, f := range c.fallbacks {
		if !f.Trigger.Matches(lower) {
			continue
		}
		if _, excluded := anyMatch(f.Excludes, lower); excluded {
			continue
		}
		exp.Muscles = exp.Muscles.Union(f.Muscles)
		exp.Hits = append(exp.Hits, Hit{Stage: StageFallback, Keyword: f.Trigger.String(), Muscles: f.Muscles})
	}
	return exp
}
