package organizer

import (
	"time"
)

// Outcome is the per-file result recorded in a run report.
type Outcome string

const (
	OutcomeMoved               Outcome = "moved"
	OutcomeSkippedNoMatch      Outcome = "skipped-no-match"
	OutcomeSkippedParseFailure Outcome = "skipped-parse-failure"
	OutcomeSkippedDeclined     Outcome = "skipped-declined"
	OutcomeDeleted             Outcome = "deleted"
	OutcomeKept                Outcome = "kept"
	OutcomeError               Outcome = "error"
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{
	OutcomeMoved,
	OutcomeDeleted,
	OutcomeKept,
	OutcomeSkippedNoMatch,
	OutcomeSkippedParseFailure,
	OutcomeSkippedDeclined,
	OutcomeError,
}

// Entry records what happened to one file. In a dry run, moved and deleted
// mean planned.
type Entry struct {
	Path        string  `json:"path"`
	Kind        string  `json:"kind"`
	Outcome     Outcome `json:"outcome"`
	Destination string  `json:"destination,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// Report summarizes one organizer run.
type Report struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DryRun      bool      `json:"dry_run"`
	Confirm     bool      `json:"confirm"`
	SourceRoot  string    `json:"source_root"`
	MoviesRoot  string    `json:"movies_root"`
	TVRoot      string    `json:"tv_root"`
	Entries     []Entry   `json:"entries"`
	Pruned      []string  `json:"pruned_directories"`
	Interrupted bool      `json:"interrupted,omitempty"`
}

func (r *Report) add(entry Entry) {
	r.Entries = append(r.Entries, entry)
}

// Counts returns the number of entries per outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, entry := range r.Entries {
		counts[entry.Outcome]++
	}
	return counts
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
