package service

import (
	"context"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/metrics"
	"github.com/alexanderramin/slaguard/internal/repository"
)

type metricsService struct {
	items      repository.WorkItemRepo
	techs      repository.TechnicianRepo
	violations repository.ViolationRepo
	now        Clock
	observer   UseCaseObserver
}

// NewMetricsService is read-only over the stores.
func NewMetricsService(
	items repository.WorkItemRepo,
	techs repository.TechnicianRepo,
	violations repository.ViolationRepo,
	observers ...UseCaseObserver,
) MetricsService {
	return &metricsService{
		items:      items,
		techs:      techs,
		violations: violations,
		now:        defaultClock,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *metricsService) Compute(ctx context.Context, req contract.MetricsRequest) (rep *metrics.Report, err error) {
	defer observe(ctx, s.observer, "metrics.compute", time.Now(), &err, map[string]any{
		"period_start": req.PeriodStart.Format(time.RFC3339),
		"period_end":   req.PeriodEnd.Format(time.RFC3339),
	})

	if err := req.Validate(); err != nil {
		return nil, err
	}
	items, err := s.items.ListTouchedBetween(ctx, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	n, err := s.violations.CountBetween(ctx, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	r := metrics.Compute(items, n, req.PeriodStart, req.PeriodEnd)
	return &r, nil
}

func (s *metricsService) Workload(ctx context.Context) ([]metrics.TechnicianWorkload, error) {
	techs, err := s.techs.List(ctx, true)
	if err != nil {
		return nil, err
	}
	counts, err := s.items.AssignedCounts(ctx)
	if err != nil {
		return nil, err
	}
	loads := make([]domain.TechnicianLoad, 0, len(techs))
	for _, t := range techs {
		loads = append(loads, domain.TechnicianLoad{Technician: t, AssignedCount: counts[t.ID]})
	}
	return metrics.AnalyzeWorkload(loads), nil
}

// Predict feeds the completions of the history window and every open item to
// the predictor.
func (s *metricsService) Predict(ctx context.Context) (*metrics.Prediction, error) {
	now := s.now()
	history, err := s.items.ListTouchedBetween(ctx, now.Add(-metrics.HistoryWindow), now.Add(time.Nanosecond))
	if err != nil {
		return nil, err
	}
	open, err := s.items.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(history)+len(open))
	items := make([]*domain.WorkItem, 0, len(history)+len(open))
	for _, group := range [][]*domain.WorkItem{history, open} {
		for _, w := range group {
			if seen[w.ID] {
				continue
			}
			seen[w.ID] = true
			items = append(items, w)
		}
	}
	p := metrics.Predict(items, now)
	return &p, nil
}
