package classify

import (
	"regexp"
	"strings"
)

// Matcher tests a lowercased exercise name against a single keyword.
type Matcher interface {
	Matches(name string) bool
	String() string
}

// Literal matches when the name contains the keyword as a substring.
type Literal string

func (l Literal) Matches(name string) bool { return strings.Contains(name, string(l)) }

func (l Literal) String() string { return string(l) }

// Pattern matches when the regular expression finds a match anywhere in the name.
type Pattern struct {
	re *regexp.Regexp
}

// Pat compiles expr into a Pattern. It panics on an invalid expression,
// so it is only used for the built-in tables.
func Pat(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

func (p Pattern) Matches(name string) bool { return p.re.MatchString(name) }

func (p Pattern) String() string { return "/" + p.re.String() + "/" }

// anyMatch returns the first matcher that matches name.
func anyMatch(matchers []Matcher, name string) (Matcher, bool) {
	for _, m := range matchers {
		if m.Matches(name) {
			return m, true
		}
	}
	return nil, false
}
