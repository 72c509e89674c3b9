package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/slaguard/internal/catalog"
	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/engine"
	"github.com/alexanderramin/slaguard/internal/notify"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/sweep"
	"github.com/alexanderramin/slaguard/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// recordingObserver keeps every use-case event.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type serviceHarness struct {
	db         *sql.DB
	uow        db.UnitOfWork
	items      *repository.SQLiteWorkItemRepo
	techs      *repository.SQLiteTechnicianRepo
	rules      *repository.SQLiteRuleRepo
	violations *repository.SQLiteViolationRepo
	actions    *repository.SQLiteActionLogRepo
	decisions  *repository.SQLiteAssignmentDecisionRepo
	sink       notify.Sink
	recorded   *testutil.RecordingSink
	runner     *sweep.Runner
	locks      *engine.ItemLocks
	observer   *recordingObserver

	Rules       RuleService
	WorkItems   WorkItemService
	Technicians TechnicianService
	Assignments AssignmentService
	Ledger      LedgerService
	Metrics     MetricsService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	rec := &testutil.RecordingSink{}
	return newServiceHarnessWithSink(t, rec, rec)
}

func newServiceHarnessWithSink(t *testing.T, sink notify.Sink, rec *testutil.RecordingSink) *serviceHarness {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	h := &serviceHarness{
		db:         database,
		uow:        uow,
		items:      repository.NewSQLiteWorkItemRepo(database),
		techs:      repository.NewSQLiteTechnicianRepo(database),
		rules:      repository.NewSQLiteRuleRepo(database),
		violations: repository.NewSQLiteViolationRepo(database),
		actions:    repository.NewSQLiteActionLogRepo(database),
		decisions:  repository.NewSQLiteAssignmentDecisionRepo(database),
		sink:       sink,
		recorded:   rec,
		locks:      engine.NewItemLocks(),
		observer:   &recordingObserver{},
	}
	assigner := engine.NewAssigner(uow, fixedClock)
	dispatcher := engine.NewDispatcher(uow, h.items, h.actions, assigner, sink, h.locks, engine.WithClock(fixedClock))
	h.runner = sweep.NewRunner(uow, h.items, h.rules, h.violations,
		engine.NewEvaluator(engine.DefaultRepeatOffenderThreshold), dispatcher, sweep.WithClock(fixedClock))

	hook := NewEngineHook(h.runner, h.actions, sink, nil)
	hook.(*engineHook).now = fixedClock

	rules := NewRuleService(h.rules, uow, h.observer)
	rules.(*ruleService).now = fixedClock
	items := NewWorkItemService(h.items, uow, hook, h.observer)
	items.(*workItemService).now = fixedClock
	techs := NewTechnicianService(h.techs, h.observer)
	techs.(*technicianService).now = fixedClock
	ledger := NewLedgerService(h.violations, h.actions)
	ledger.(*ledgerService).now = fixedClock
	metricsSvc := NewMetricsService(h.items, h.techs, h.violations, h.observer)
	metricsSvc.(*metricsService).now = fixedClock

	h.Rules = rules
	h.WorkItems = items
	h.Technicians = techs
	h.Assignments = NewAssignmentService(assigner, h.items, h.decisions, h.locks, h.observer)
	h.Ledger = ledger
	h.Metrics = metricsSvc
	return h
}

func (h *serviceHarness) seedDefaults(t *testing.T) {
	t.Helper()
	for _, r := range catalog.Defaults() {
		require.NoError(t, h.rules.Create(context.Background(), r))
	}
}

// seedItem writes directly to the store, bypassing the change hook.
func (h *serviceHarness) seedItem(t *testing.T, opts ...testutil.WorkItemOption) *domain.WorkItem {
	t.Helper()
	w := testutil.NewTestWorkItem("job", opts...)
	require.NoError(t, h.items.Create(context.Background(), w))
	return w
}

func (h *serviceHarness) seedTech(t *testing.T, name string, opts ...testutil.TechnicianOption) *domain.Technician {
	t.Helper()
	tech := testutil.NewTestTechnician(name, opts...)
	require.NoError(t, h.techs.Create(context.Background(), tech))
	return tech
}
