package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
)

// MaxStatsDays bounds ViolationStats.
const MaxStatsDays = 366

type ledgerService struct {
	violations repository.ViolationRepo
	actions    repository.ActionLogRepo
	now        Clock
}

func NewLedgerService(violations repository.ViolationRepo, actions repository.ActionLogRepo) LedgerService {
	return &ledgerService{violations: violations, actions: actions, now: defaultClock}
}

func (s *ledgerService) Violations(ctx context.Context, q contract.ViolationQuery) ([]*domain.Violation, error) {
	return s.violations.List(ctx, repository.ViolationFilter{
		WorkItemID: q.WorkItemID,
		RuleID:     q.RuleID,
		From:       q.From,
		To:         q.To,
		Resolved:   q.Resolved,
		Limit:      q.Limit,
	})
}

func (s *ledgerService) Actions(ctx context.Context, q contract.ActionQuery) ([]*domain.ActionLogEntry, error) {
	return s.actions.List(ctx, repository.ActionLogFilter{
		WorkItemID:  q.WorkItemID,
		RuleID:      q.RuleID,
		ViolationID: q.ViolationID,
		From:        q.From,
		To:          q.To,
		Limit:       q.Limit,
	})
}

func (s *ledgerService) ViolationStats(ctx context.Context, days int) ([]domain.DailyViolationStat, error) {
	if days <= 0 {
		days = 30
	}
	if days > MaxStatsDays {
		return nil, &contract.RequestError{Code: contract.ErrInvalidWindow, Message: fmt.Sprintf("at most %d days, got %d", MaxStatsDays, days)}
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.violations.DailyStats(ctx, today.AddDate(0, 0, -(days-1)))
}
