// Package report holds the consumers of a scan report: tiers, sorted and
// filtered views, a standalone HTML export and report comparison.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raysh454/vertex/internal/scanner"
)

// Tier buckets a score the way the report badge shows it.
func Tier(score float64) string {
	switch {
	case score >= 90:
		return "AAA"
	case score >= 50:
		return "AA"
	case score >= 30:
		return "A"
	default:
		return "Needs Work"
	}
}

type SortKey string

const (
	SortDefault  SortKey = ""
	SortType     SortKey = "type"
	SortSeverity SortKey = "severity"
	SortFixable  SortKey = "fixable"
)

// ParseSortKey accepts "", "default", "type", "severity" and "fixable".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortDefault, SortType, SortSeverity, SortFixable:
		return k, nil
	case "default":
		return SortDefault, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Filter narrows the issue list. Zero values match everything.
type Filter struct {
	FixableOnly bool             `json:"fixable_only,omitempty"`
	Type        scanner.Category `json:"type,omitempty"`
	Severity    scanner.Severity `json:"severity,omitempty"`
}

func (f Filter) match(is scanner.Issue) bool {
	if f.FixableOnly && !is.Fixable {
		return false
	}
	if f.Type != "" && is.Type != f.Type {
		return false
	}
	if f.Severity != "" && is.Severity != f.Severity {
		return false
	}
	return true
}

// View is the display state for one report.
type View struct {
	Sort   SortKey `json:"sort,omitempty"`
	Filter Filter  `json:"filter"`
}

// Apply returns a filtered, stably sorted copy of issues.
func Apply(issues []scanner.Issue, v View) []scanner.Issue {
	out := make([]scanner.Issue, 0, len(issues))
	for _, is := range issues {
		if v.Filter.match(is) {
			out = append(out, is)
		}
	}

	var less func(a, b scanner.Issue) bool
	switch v.Sort {
	case SortType:
		less = func(a, b scanner.Issue) bool { return a.Type < b.Type }
	case SortSeverity:
		less = func(a, b scanner.Issue) bool { return a.Severity.Rank() < b.Severity.Rank() }
	case SortFixable:
		less = func(a, b scanner.Issue) bool { return a.Fixable && !b.Fixable }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Counts tallies issues per severity.
func Counts(issues []scanner.Issue) map[scanner.Severity]int {
	out := map[scanner.Severity]int{
		scanner.SeverityHigh:   0,
		scanner.SeverityMedium: 0,
		scanner.SeverityLow:    0,
	}
	for _, is := range issues {
		out[is.Severity]++
	}
	return out
}
