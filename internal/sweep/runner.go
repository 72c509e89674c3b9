// Package sweep runs the periodic rule evaluation cycle: scan open items,
// evaluate rules, record violations, dispatch actions for new violations and
// resolve violations that no longer hold.
package sweep

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/engine"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/telemetry"
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseScanning    Phase = "scanning"
	PhaseEvaluating  Phase = "evaluating"
	PhaseDispatching Phase = "dispatching"
	PhaseReconciling Phase = "reconciling"
)

// DefaultWorkers bounds parallel evaluation.
const DefaultWorkers = 8

// Report summarizes one cycle. Counts are partial when Run returns an error.
// Resumed counts violations from an earlier, interrupted dispatch that were
// queued again.
type Report struct {
	StartedAt          time.Time
	Duration           time.Duration
	ItemsScanned       int
	RulesEvaluated     int
	ViolationsDetected int
	Reopened           int
	Resumed            int
	Resolved           int
	ActionsDispatched  int
	ActionsFailed      int
	// FailedPhase names the phase that aborted the cycle, if any.
	FailedPhase Phase
}

type Runner struct {
	uow        db.UnitOfWork
	items      repository.WorkItemRepo
	rules      repository.RuleRepo
	violations repository.ViolationRepo
	evaluator  *engine.Evaluator
	dispatcher *engine.Dispatcher
	workers    int
	now        func() time.Time
	logger     *slog.Logger
	metrics    *telemetry.SweepMetrics
	onPhase    func(Phase)
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithMetrics(m *telemetry.SweepMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithPhaseHook observes phase transitions. The hook must not block.
func WithPhaseHook(fn func(Phase)) Option {
	return func(r *Runner) { r.onPhase = fn }
}

func NewRunner(
	uow db.UnitOfWork,
	items repository.WorkItemRepo,
	rules repository.RuleRepo,
	violations repository.ViolationRepo,
	evaluator *engine.Evaluator,
	dispatcher *engine.Dispatcher,
	opts ...Option,
) *Runner {
	r := &Runner{
		uow:        uow,
		items:      items,
		rules:      rules,
		violations: violations,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		workers:    DefaultWorkers,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// dispatchJob is a newly created violation awaiting its rule's actions.
type dispatchJob struct {
	item      *domain.WorkItem
	rule      *domain.Rule
	violation *domain.Violation
}

// Run executes one full cycle. A failing phase aborts the remaining phases;
// records already written stay consistent because every write is atomic.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	now := r.now()
	rep := &Report{StartedAt: now}
	start := time.Now()
	defer r.setPhase(PhaseIdle)

	err := r.run(ctx, now, rep)
	rep.Duration = time.Since(start)
	r.metrics.RecordSweep(ctx, telemetry.SweepSample{
		ItemsScanned:       rep.ItemsScanned,
		ViolationsDetected: rep.ViolationsDetected,
		Resolved:           rep.Resolved,
		ActionsDispatched:  rep.ActionsDispatched,
		ActionsFailed:      rep.ActionsFailed,
		Duration:           rep.Duration,
		Failed:             err != nil,
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "sweep aborted", "phase", string(rep.FailedPhase), "error", err)
		return rep, err
	}
	r.logger.InfoContext(ctx, "sweep finished",
		"items", rep.ItemsScanned,
		"violations", rep.ViolationsDetected,
		"reopened", rep.Reopened,
		"resumed", rep.Resumed,
		"resolved", rep.Resolved,
		"actions", rep.ActionsDispatched,
		"actions_failed", rep.ActionsFailed,
		"duration_ms", rep.Duration.Milliseconds(),
	)
	return rep, nil
}

// EvaluateItem runs the evaluate and dispatch phases for one item outside the
// scheduled cycle. Violations already dispatched today are not dispatched
// again, and dispatch resumes per action under the item lock, so a sweep and a
// change hook racing on the same item run each action at most once.
func (r *Runner) EvaluateItem(ctx context.Context, item *domain.WorkItem) (*Report, error) {
	now := r.now()
	rep := &Report{StartedAt: now, ItemsScanned: 1}
	if item.IsTerminal() {
		return rep, nil
	}
	rules, err := r.rules.List(ctx, true)
	if err != nil {
		rep.FailedPhase = PhaseScanning
		return rep, fmt.Errorf("loading rules: %w", err)
	}
	rep.RulesEvaluated = len(rules)

	jobs, err := r.evaluate(ctx, []*domain.WorkItem{item}, rules, now, rep)
	if err != nil {
		rep.FailedPhase = PhaseEvaluating
		return rep, err
	}
	if err := r.dispatch(ctx, jobs, rep); err != nil {
		rep.FailedPhase = PhaseDispatching
		return rep, err
	}
	return rep, nil
}

// ResolveItem resolves every open violation of an item, returning how many
// were closed.
func (r *Runner) ResolveItem(ctx context.Context, itemID, reason string) (int, error) {
	resolved := false
	open, err := r.violations.List(ctx, repository.ViolationFilter{WorkItemID: itemID, Resolved: &resolved})
	if err != nil {
		return 0, err
	}
	now := r.now()
	n := 0
	for _, v := range open {
		if err := r.violations.Resolve(ctx, v.ID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return n, err
		}
		n++
		r.logger.InfoContext(ctx, "violation resolved",
			"violation_id", v.ID, "work_item_id", itemID, "rule_id", v.RuleID, "reason", reason)
	}
	return n, nil
}

func (r *Runner) run(ctx context.Context, now time.Time, rep *Report) error {
	fail := func(p Phase, err error) error {
		rep.FailedPhase = p
		return fmt.Errorf("sweep %s: %w", p, err)
	}

	r.setPhase(PhaseScanning)
	items, rules, err := r.scan(ctx)
	if err != nil {
		return fail(PhaseScanning, err)
	}
	rep.ItemsScanned = len(items)
	rep.RulesEvaluated = len(rules)

	r.setPhase(PhaseEvaluating)
	jobs, err := r.evaluate(ctx, items, rules, now, rep)
	if err != nil {
		return fail(PhaseEvaluating, err)
	}

	r.setPhase(PhaseDispatching)
	if err := r.dispatch(ctx, jobs, rep); err != nil {
		return fail(PhaseDispatching, err)
	}

	r.setPhase(PhaseReconciling)
	if err := r.reconcile(ctx, now, rep); err != nil {
		return fail(PhaseReconciling, err)
	}
	return nil
}

func (r *Runner) setPhase(p Phase) {
	if r.onPhase != nil {
		r.onPhase(p)
	}
}

func (r *Runner) scan(ctx context.Context) ([]*domain.WorkItem, []*domain.Rule, error) {
	items, err := r.items.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	rules, err := r.rules.List(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	return items, rules, nil
}

// evaluate matches every enabled rule against every item in parallel and
// records matches. Violations whose actions have not all been logged become
// dispatch jobs: fresh ones, and ones left behind by an aborted dispatch. A
// repeated sweep on the same day after a clean one dispatches nothing.
func (r *Runner) evaluate(ctx context.Context, items []*domain.WorkItem, rules []*domain.Rule, now time.Time, rep *Report) ([]dispatchJob, error) {
	var (
		mu   sync.Mutex
		jobs []dispatchJob
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, item := range items {
		g.Go(func() error {
			for _, rule := range rules {
				res := r.evaluator.Evaluate(item, rule, now)
				if !res.Matched {
					continue
				}
				v, outcome, err := r.record(gctx, item, rule, res, now)
				if err != nil {
					return err
				}
				mu.Lock()
				switch outcome {
				case repository.RecordCreated:
					rep.ViolationsDetected++
				case repository.RecordReopened:
					rep.Reopened++
				}
				if v.Pending() {
					if outcome != repository.RecordCreated {
						rep.Resumed++
					}
					jobs = append(jobs, dispatchJob{item: item, rule: rule, violation: v})
				}
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// record upserts the violation and bumps the item's violation count in one
// transaction.
func (r *Runner) record(ctx context.Context, item *domain.WorkItem, rule *domain.Rule, res engine.MatchResult, now time.Time) (*domain.Violation, repository.RecordOutcome, error) {
	v := domain.NewViolation(item, rule, res.Severity, now)
	v.Data.RepeatOffender = res.RepeatOffender

	var (
		stored  *domain.Violation
		outcome repository.RecordOutcome
	)
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		stored, outcome, err = repository.NewSQLiteViolationRepo(tx).Record(ctx, v)
		if err != nil {
			return err
		}
		if outcome == repository.RecordCreated {
			return repository.NewSQLiteWorkItemRepo(tx).IncrementViolationCount(ctx, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, repository.RecordExisting, fmt.Errorf("recording %s for %s: %w", rule.ID, item.ID, err)
	}
	if outcome == repository.RecordCreated {
		r.logger.InfoContext(ctx, "violation detected",
			"work_item_id", item.ID, "rule_id", rule.ID, "severity", string(stored.Severity))
	}
	return stored, outcome, nil
}

// dispatch runs each item's jobs sequentially in rule priority order while
// items proceed concurrently.
func (r *Runner) dispatch(ctx context.Context, jobs []dispatchJob, rep *Report) error {
	var order []string
	byItem := make(map[string][]dispatchJob)
	for _, j := range jobs {
		if _, ok := byItem[j.item.ID]; !ok {
			order = append(order, j.item.ID)
		}
		byItem[j.item.ID] = append(byItem[j.item.ID], j)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, id := range order {
		itemJobs := byItem[id]
		sortJobs(itemJobs)
		g.Go(func() error {
			for _, j := range itemJobs {
				out, err := r.dispatcher.Dispatch(gctx, j.item, j.rule, j.violation)
				if out != nil {
					mu.Lock()
					rep.ActionsDispatched += len(out.Results)
					rep.ActionsFailed += out.Failed()
					mu.Unlock()
				}
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// reconcile resolves open violations whose item is closed or gone, whose rule
// is disabled or gone, or whose rule no longer matches the current item state.
func (r *Runner) reconcile(ctx context.Context, now time.Time, rep *Report) error {
	open, err := r.violations.ListUnresolved(ctx)
	if err != nil {
		return err
	}

	items := make(map[string]*domain.WorkItem)
	rules := make(map[string]*domain.Rule)
	for _, v := range open {
		item, err := cachedLookup(ctx, items, v.WorkItemID, r.items.GetByID)
		if err != nil {
			return err
		}
		rule, err := cachedLookup(ctx, rules, v.RuleID, r.rules.GetByID)
		if err != nil {
			return err
		}

		reason := resolveReason(r.evaluator, item, rule, now)
		if reason == "" {
			continue
		}
		if err := r.violations.Resolve(ctx, v.ID, now); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		rep.Resolved++
		r.logger.InfoContext(ctx, "violation resolved",
			"violation_id", v.ID, "work_item_id", v.WorkItemID, "rule_id", v.RuleID, "reason", reason)
	}
	return nil
}

func resolveReason(ev *engine.Evaluator, item *domain.WorkItem, rule *domain.Rule, now time.Time) string {
	switch {
	case item == nil:
		return "work item missing"
	case item.IsTerminal():
		return "work item " + string(item.Status)
	case rule == nil:
		return "rule missing"
	case !rule.Enabled:
		return "rule disabled"
	case !ev.Evaluate(item, rule, now).Matched:
		return "condition cleared"
	default:
		return ""
	}
}

// cachedLookup fetches by id once per cycle. A missing record caches as nil.
func cachedLookup[T any](ctx context.Context, cache map[string]*T, id string, get func(context.Context, string) (*T, error)) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		v, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	cache[id] = v
	return v, nil
}

func sortJobs(jobs []dispatchJob) {
	slices.SortStableFunc(jobs, func(a, b dispatchJob) int {
		if a.rule.Priority != b.rule.Priority {
			return cmp.Compare(b.rule.Priority, a.rule.Priority)
		}
		return cmp.Compare(a.rule.ID, b.rule.ID)
	})
}
