package mirror

import (
	"time"

	"github.com/matzehuels/modmirror/pkg/archive"
	"github.com/matzehuels/modmirror/pkg/errors"
	"github.com/matzehuels/modmirror/pkg/observability"
)

// Result is the outcome of syncing one repository.
type Result struct {
	Source   string        // "owner/name"
	Name     string        // state directory name
	Outcome  string        // observability.Outcome*
	Previous string        // version before the run
	Version  string        // resolved version; empty if resolution failed
	Type     archive.Type  // set when an artifact was downloaded
	Artifact string        // download URL
	Size     int64         // artifact bytes
	Duration time.Duration // wall time for this repository
	Err      error         // set when Outcome is failed
}

// Failed reports whether the repository failed.
func (r Result) Failed() bool { return r.Outcome == observability.OutcomeFailed }

// Report summarizes a sync run. Results are in declared order.
type Report struct {
	RunID    string
	Results  []Result
	Listing  []string // directory names written to the listing manifest
	Duration time.Duration
}

// Count returns how many results have the given outcome.
func (r *Report) Count(outcome string) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failures returns the failed results.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Err summarizes the failures as a single error, or nil if none failed.
func (r *Report) Err() error {
	failed := r.Failures()
	switch len(failed) {
	case 0:
		return nil
	case 1:
		code := errors.GetCode(failed[0].Err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return errors.Wrap(code, failed[0].Err, "sync failed for %s", failed[0].Source)
	default:
		return errors.New(errors.ErrCodeInternal, "sync failed for %d of %d repositories", len(failed), len(r.Results))
	}
}
