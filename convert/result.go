package convert

import (
	"errors"

	"github.com/minios-linux/resxgen/dict"
)

// Status is the outcome of converting one document.
type Status int

const (
	// StatusWritten: the output file was rendered and written.
	StatusWritten Status = iota
	// StatusSkippedEmpty: the document has no string resources, so nothing
	// was written. Not an error.
	StatusSkippedEmpty
	// StatusUnchanged: the lock file shows the output is current.
	StatusUnchanged
	// StatusFailed: see Result.Err. Nothing was written for the document
	// unless registration failed after the write.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusSkippedEmpty:
		return "skipped-empty"
	case StatusUnchanged:
		return "unchanged"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result describes what happened to one document.
type Result struct {
	Source string
	// Output is the computed output path (set once the document parsed).
	Output string
	Status Status
	// Entries is the number of string resources in the source.
	Entries int
	// Conflicts lists keys used both as values and as parents.
	Conflicts []dict.Conflict
	// Registered is true when the output was newly added to the project.
	Registered bool
	Err        error
}

// Report aggregates the results of one Run, in discovery order.
type Report struct {
	Flow    Flow
	Results []Result
}

// Count returns the number of results with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Err joins the errors of all failed documents, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}
