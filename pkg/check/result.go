// Package check runs conformity checks on an OIFITS dataset.
//
// Breaches are data, not errors: every check returns a Result with the
// worst severity found and a bounded list of locations. Checks never modify
// the dataset.
package check

import "fmt"

// Level is the severity of a breach. Higher is worse.
type Level int

const (
	None Level = iota
	Warning
	NotConformant
	Malformed
)

func (l Level) String() string {
	switch l {
	case None:
		return "OK"
	case Warning:
		return "WARNING"
	case NotConformant:
		return "NOT CONFORMANT"
	case Malformed:
		return "MALFORMED"
	default:
		return "UNKNOWN"
	}
}

// MaxReports is the default cap on stored locations per Result.
const MaxReports = 10

// Result is the outcome of one check.
type Result struct {
	Level       Level
	Description string
	Locations   []string
	NumBreaches int

	maxReports int
}

func newResult(maxReports int) *Result {
	if maxReports <= 0 {
		maxReports = MaxReports
	}
	return &Result{maxReports: maxReports}
}

// breach records one breach at level. Only the first maxReports locations
// are kept; NumBreaches counts all of them.
func (r *Result) breach(level Level, description, format string, args ...any) {
	if level > r.Level {
		r.Level = level
	}
	if r.Description == "" {
		r.Description = description
	}
	r.NumBreaches++
	if len(r.Locations) < r.maxReports {
		r.Locations = append(r.Locations, fmt.Sprintf(format, args...))
	}
}

// Truncated reports whether some locations were not stored.
func (r *Result) Truncated() bool {
	return r.NumBreaches > len(r.Locations)
}

// Passed reports whether no breach was found.
func (r *Result) Passed() bool {
	return r.Level == None
}
