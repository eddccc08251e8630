package model

import "time"

// AccountOutcome records what happened to one account during a cycle.
type AccountOutcome struct {
	AccountID string
	City      string
	Status    Status
	Verdict   Verdict
	Processed bool // dispatched to a worker
	Success   bool
	Matches   int
	Err       string
}

// CycleReport aggregates one full pass over the account set. Created once
// per cycle and discarded after being logged and recorded.
type CycleReport struct {
	Number      int
	StartedAt   time.Time
	NextStartAt time.Time
	Outcomes    []AccountOutcome
	Processed   int
	Skipped     int
	Failed      int
	FatalErr    string // set when the cycle aborted as a whole
}

// Count recomputes the processed/skipped/failed totals from the outcomes.
func (r *CycleReport) Count() {
	r.Processed, r.Skipped, r.Failed = 0, 0, 0
	for _, o := range r.Outcomes {
		switch {
		case o.Processed && o.Success:
			r.Processed++
		case o.Processed:
			r.Failed++
		default:
			r.Skipped++
		}
	}
}
