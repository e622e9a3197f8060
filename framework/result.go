package framework

import (
	"strings"
)

// Results is the outcome of a run of checks.
//
// Failures contains only gating checks that failed; a run is OK if there are none. Failed
// informational checks are listed in Warnings instead.
type Results struct {
	Checks   []CheckResult
	Failures []CheckResult
	Warnings []CheckResult
}

type CheckResult struct {
	ID      CheckID
	Errors  []error
	Skipped bool
	Gating  bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Find returns the result for the check with the given name path, if it ran.
func (r Results) Find(path ...string) (CheckResult, bool) {
	want := CheckID{Path: path}.String()
	for _, c := range r.Checks {
		if c.ID.String() == want {
			return c, true
		}
	}
	return CheckResult{}, false
}

type CheckID struct {
	Path []string
}

func (c CheckID) String() string {
	return strings.Join(c.Path, "/")
}
