package recorder

import "time"

// CycleEvent summarizes one scheduler cycle.
type CycleEvent struct {
	Number      int
	StartedAt   time.Time
	NextStartAt time.Time
	Processed   int
	Skipped     int
	Failed      int
	FatalErr    string
}

// OutcomeEvent records one account's verdict and result within a cycle.
type OutcomeEvent struct {
	CycleNumber int
	AccountID   string
	City        string
	Status      string
	Reason      string
	SubReason   string
	Detail      string
	Processed   bool
	Success     bool
	Matches     int
	Err         string
}

// AssignmentEvent records a username permanently consumed by an account.
type AssignmentEvent struct {
	Username  string
	AccountID string
	City      string
}

// Recorder persists cycle history for analysis.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecordOutcome(evt *OutcomeEvent) error
	RecordAssignment(evt *AssignmentEvent) error
	Close() error
}
