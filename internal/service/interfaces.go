package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/metrics"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/sweep"
)

type RuleService interface {
	List(ctx context.Context, enabledOnly bool) ([]*domain.Rule, error)
	GetByID(ctx context.Context, id string) (*domain.Rule, error)
	Create(ctx context.Context, r *domain.Rule) error
	Update(ctx context.Context, r *domain.Rule) error
	SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Rule, error)
	Delete(ctx context.Context, id string) error
	// SeedDefaults inserts the built-in rules that are not in the catalog yet.
	SeedDefaults(ctx context.Context) (int, error)
	// EnsureCatalog fills an empty catalog from rulesFile, or from the
	// built-in rules when rulesFile is empty. A non-empty catalog is left alone.
	EnsureCatalog(ctx context.Context, rulesFile string) (int, error)
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
	Export(ctx context.Context, w io.Writer) error
}

// ImportResult counts the rules an import created and replaced.
type ImportResult struct {
	Created int
	Updated int
}

type WorkItemService interface {
	Create(ctx context.Context, w *domain.WorkItem) (*contract.ChangeResult, error)
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	List(ctx context.Context, f repository.WorkItemFilter) ([]*domain.WorkItem, error)
	ChangeStatus(ctx context.Context, id string, status domain.WorkItemStatus) (*contract.ChangeResult, error)
	ChangePriority(ctx context.Context, id string, p domain.Priority) (*contract.ChangeResult, error)
}

type TechnicianService interface {
	Create(ctx context.Context, t *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Technician, error)
	Update(ctx context.Context, t *domain.Technician) error
	SetActive(ctx context.Context, id string, active bool) (*domain.Technician, error)
}

type SweepService interface {
	// Run triggers one sweep now. Business outcomes, including a sweep that
	// is already running, are reported in the result rather than as errors.
	Run(ctx context.Context) *contract.SweepResult
	State() sweep.Phase
}

type AssignmentService interface {
	Assign(ctx context.Context, req contract.AssignmentRequest) *contract.AssignmentResult
	AssignBulk(ctx context.Context, req contract.BulkAssignmentRequest) (*contract.BulkAssignmentResult, error)
	History(ctx context.Context, workItemID string) ([]*domain.AssignmentDecision, error)
}

type LedgerService interface {
	Violations(ctx context.Context, q contract.ViolationQuery) ([]*domain.Violation, error)
	Actions(ctx context.Context, q contract.ActionQuery) ([]*domain.ActionLogEntry, error)
	// ViolationStats counts violations per day and severity over the trailing days.
	ViolationStats(ctx context.Context, days int) ([]domain.DailyViolationStat, error)
}

type MetricsService interface {
	Compute(ctx context.Context, req contract.MetricsRequest) (*metrics.Report, error)
	Workload(ctx context.Context) ([]metrics.TechnicianWorkload, error)
	Predict(ctx context.Context) (*metrics.Prediction, error)
}

// Clock supplies the current time. Services default to UTC wall time.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now().UTC() }
