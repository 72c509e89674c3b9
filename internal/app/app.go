// Package app wires the store, the rule engine, the sweep scheduler and the
// services into one set of components shared by the binary and its tests.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/slaguard/internal/config"
	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/engine"
	"github.com/alexanderramin/slaguard/internal/notify"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/service"
	"github.com/alexanderramin/slaguard/internal/sweep"
	"github.com/alexanderramin/slaguard/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

// Options overrides parts of the config-driven wiring.
type Options struct {
	Logger *slog.Logger
	// Sink replaces the log or Redis sink chosen from the config. It is
	// still wrapped with retries and rate limiting.
	Sink notify.Sink
}

type Components struct {
	Rules       service.RuleService
	WorkItems   service.WorkItemService
	Technicians service.TechnicianService
	Sweep       service.SweepService
	Assignments service.AssignmentService
	Ledger      service.LedgerService
	Metrics     service.MetricsService

	Runner    *sweep.Runner
	Scheduler *sweep.Scheduler
	Sink      notify.Sink

	redis *redis.Client
}

// New builds every component on database. The caller owns database; Close
// releases what New opened itself.
func New(database *sql.DB, cfg config.Config, opts Options) (*Components, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Components{}

	var lease sweep.Lease = sweep.LocalLease{}
	sink := opts.Sink
	if cfg.RedisURL != "" {
		client, err := notify.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		stream := notify.NewRedisStreamSink(client, cfg.NotifyStream)
		pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		err = stream.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, using log sink and local sweep lease", "error", err.Error())
			_ = client.Close()
		} else {
			c.redis = client
			// The lease outlives one interval so a crashed holder blocks at
			// most one extra cycle.
			lease = sweep.NewRedisLease(client, "", 2*cfg.SweepInterval)
			if sink == nil {
				sink = stream
			}
		}
	}
	if sink == nil {
		sink = notify.NewLogSink(logger)
	}
	c.Sink = notify.NewRetryingSink(sink, cfg.NotifyRetries,
		notify.WithRateLimit(cfg.NotifyRate),
		notify.WithSendTimeout(cfg.NotifyTimeout))

	var sweepMetrics *telemetry.SweepMetrics
	if cfg.OTel {
		m, err := telemetry.NewSweepMetrics(nil)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("registering sweep metrics: %w", err)
		}
		sweepMetrics = m
	}

	uow := db.NewSQLiteUnitOfWork(database)
	items := repository.NewSQLiteWorkItemRepo(database)
	techs := repository.NewSQLiteTechnicianRepo(database)
	rules := repository.NewSQLiteRuleRepo(database)
	violations := repository.NewSQLiteViolationRepo(database)
	actions := repository.NewSQLiteActionLogRepo(database)
	decisions := repository.NewSQLiteAssignmentDecisionRepo(database)

	clock := func() time.Time { return time.Now().UTC() }
	locks := engine.NewItemLocks()
	assigner := engine.NewAssigner(uow, clock)
	dispatcher := engine.NewDispatcher(uow, items, actions, assigner, c.Sink, locks,
		engine.WithLogger(logger),
		engine.WithContacts(engine.Contacts{Supervisor: cfg.SupervisorID, Manager: cfg.ManagerID}),
	)

	phases := &sweep.PhaseTracker{}
	c.Runner = sweep.NewRunner(uow, items, rules, violations,
		engine.NewEvaluator(cfg.RepeatOffenderThreshold), dispatcher,
		sweep.WithWorkers(cfg.EvalWorkers),
		sweep.WithLogger(logger),
		sweep.WithMetrics(sweepMetrics),
		sweep.WithPhaseHook(phases.Set),
	)
	c.Scheduler = sweep.NewScheduler(c.Runner, cfg.SweepInterval,
		sweep.WithLease(lease),
		sweep.WithPhaseTracker(phases),
		sweep.WithSchedulerLogger(logger),
		sweep.WithSchedulerMetrics(sweepMetrics),
	)

	observer := service.NewLogUseCaseObserver(logger)
	hook := service.NewEngineHook(c.Runner, actions, c.Sink, logger)

	c.Rules = service.NewRuleService(rules, uow, observer)
	c.WorkItems = service.NewWorkItemService(items, uow, hook, observer)
	c.Technicians = service.NewTechnicianService(techs, observer)
	c.Sweep = service.NewSweepService(c.Scheduler, observer)
	c.Assignments = service.NewAssignmentService(assigner, items, decisions, locks, observer)
	c.Ledger = service.NewLedgerService(violations, actions)
	c.Metrics = service.NewMetricsService(items, techs, violations, observer)
	return c, nil
}

// Close releases the Redis client, if one was opened.
func (c *Components) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
