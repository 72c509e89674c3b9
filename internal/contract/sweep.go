package contract

import "time"

// SweepResult reports one manual sweep. Counts are partial when Outcome is
// failed.
type SweepResult struct {
	Outcome            Outcome
	Reason             string
	StartedAt          time.Time
	DurationMs         int64
	ItemsScanned       int
	RulesEvaluated     int
	ViolationsDetected int
	Reopened           int
	Resolved           int
	ActionsDispatched  int
	ActionsFailed      int
	FailedPhase        string
}
