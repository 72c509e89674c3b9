package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// WorkItemFilter narrows List. Zero values mean no constraint.
type WorkItemFilter struct {
	Status          domain.WorkItemStatus
	TechnicianID    string
	IncludeTerminal bool
	Limit           int
}

// ViolationFilter narrows violation queries. From is inclusive, To exclusive.
type ViolationFilter struct {
	WorkItemID string
	RuleID     string
	From       *time.Time
	To         *time.Time
	Resolved   *bool
	Limit      int
}

// ActionLogFilter narrows action log queries. From is inclusive, To exclusive.
type ActionLogFilter struct {
	WorkItemID  string
	RuleID      string
	ViolationID string
	From        *time.Time
	To          *time.Time
	Limit       int
}

type WorkItemRepo interface {
	Create(ctx context.Context, w *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	Update(ctx context.Context, w *domain.WorkItem) error
	List(ctx context.Context, f WorkItemFilter) ([]*domain.WorkItem, error)
	ListActive(ctx context.Context) ([]*domain.WorkItem, error)
	ListUnassigned(ctx context.Context) ([]*domain.WorkItem, error)
	// ListTouchedBetween returns items created, completed or escalated in [start, end).
	ListTouchedBetween(ctx context.Context, start, end time.Time) ([]*domain.WorkItem, error)
	// AssignedCounts maps technician id to its open assigned item count.
	AssignedCounts(ctx context.Context) (map[string]int, error)
	IncrementViolationCount(ctx context.Context, id string) error
}

type TechnicianRepo interface {
	Create(ctx context.Context, t *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	Update(ctx context.Context, t *domain.Technician) error
	List(ctx context.Context, activeOnly bool) ([]*domain.Technician, error)
}

type RuleRepo interface {
	Create(ctx context.Context, r *domain.Rule) error
	GetByID(ctx context.Context, id string) (*domain.Rule, error)
	Update(ctx context.Context, r *domain.Rule) error
	Delete(ctx context.Context, id string) error
	// List returns rules ordered by priority descending, then id.
	List(ctx context.Context, enabledOnly bool) ([]*domain.Rule, error)
}

// RecordOutcome reports what Record did with a violation.
type RecordOutcome int

const (
	RecordExisting RecordOutcome = iota
	RecordCreated
	RecordReopened
)

func (o RecordOutcome) String() string {
	switch o {
	case RecordCreated:
		return "created"
	case RecordReopened:
		return "reopened"
	default:
		return "existing"
	}
}

type ViolationRepo interface {
	// Record inserts v unless a violation with the same dedup key exists.
	// An existing resolved record is reopened.
	Record(ctx context.Context, v *domain.Violation) (*domain.Violation, RecordOutcome, error)
	GetByID(ctx context.Context, id string) (*domain.Violation, error)
	ListUnresolved(ctx context.Context) ([]*domain.Violation, error)
	Resolve(ctx context.Context, id string, at time.Time) error
	MarkDispatched(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f ViolationFilter) ([]*domain.Violation, error)
	CountBetween(ctx context.Context, start, end time.Time) (int, error)
	DailyStats(ctx context.Context, since time.Time) ([]domain.DailyViolationStat, error)
}

type ActionLogRepo interface {
	Append(ctx context.Context, e *domain.ActionLogEntry) error
	List(ctx context.Context, f ActionLogFilter) ([]*domain.ActionLogEntry, error)
	Count(ctx context.Context) (int, error)
}

type AssignmentDecisionRepo interface {
	Create(ctx context.Context, d *domain.AssignmentDecision) error
	ListByWorkItem(ctx context.Context, workItemID string) ([]*domain.AssignmentDecision, error)
}
