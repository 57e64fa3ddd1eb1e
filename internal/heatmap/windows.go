package heatmap

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Windows is the set of look-back windows a caller may request.
type Windows struct {
	Default int
	Allowed []int
}

// DefaultWindows offers one week, one month and one quarter.
var DefaultWindows = Windows{Default: 30, Allowed: []int{7, 30, 90}}

// Resolve returns days if allowed, the default if days is 0, or an error.
func (w Windows) Resolve(days int) (int, error) {
	if days == 0 {
		return w.Default, nil
	}
	if !slices.Contains(w.Allowed, days) {
		return 0, fmt.Errorf("window %d days not supported, use one of %s", days, w.list())
	}
	return days, nil
}

// ResolveString parses a window query parameter. Empty means the default.
func (w Windows) ResolveString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return w.Default, nil
	}
	days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil {
		return 0, fmt.Errorf("invalid window %q", s)
	}
	return w.Resolve(days)
}

func (w Windows) list() string {
	parts := make([]string, len(w.Allowed))
	for i, d := range w.Allowed {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ", ")
}
