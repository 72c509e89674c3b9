package contract

import "time"

const DefaultQueryLimit = 100

// ViolationQuery filters the violation ledger. From is inclusive, To
// exclusive.
type ViolationQuery struct {
	WorkItemID string
	RuleID     string
	From       *time.Time
	To         *time.Time
	Resolved   *bool
	Limit      int
}

func NewViolationQuery() ViolationQuery {
	return ViolationQuery{Limit: DefaultQueryLimit}
}

// ActionQuery filters the action log. From is inclusive, To exclusive.
type ActionQuery struct {
	WorkItemID  string
	RuleID      string
	ViolationID string
	From        *time.Time
	To          *time.Time
	Limit       int
}

func NewActionQuery() ActionQuery {
	return ActionQuery{Limit: DefaultQueryLimit}
}

// MetricsRequest selects the half-open window [PeriodStart, PeriodEnd).
type MetricsRequest struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// NewMetricsRequest covers the trailing days up to now.
func NewMetricsRequest(now time.Time, days int) MetricsRequest {
	if days <= 0 {
		days = 30
	}
	return MetricsRequest{PeriodStart: now.AddDate(0, 0, -days), PeriodEnd: now}
}

// Validate rejects windows that end before they start.
func (r MetricsRequest) Validate() error {
	if r.PeriodStart.IsZero() || r.PeriodEnd.IsZero() {
		return &RequestError{Code: ErrInvalidPeriod, Message: "period start and end are required"}
	}
	if r.PeriodEnd.Before(r.PeriodStart) {
		return &RequestError{Code: ErrInvalidPeriod, Message: "period end precedes period start"}
	}
	return nil
}
