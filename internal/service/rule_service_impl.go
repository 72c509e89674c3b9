package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/slaguard/internal/catalog"
	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
)

type ruleService struct {
	rules    repository.RuleRepo
	uow      db.UnitOfWork
	now      Clock
	observer UseCaseObserver
}

func NewRuleService(rules repository.RuleRepo, uow db.UnitOfWork, observers ...UseCaseObserver) RuleService {
	return &ruleService{
		rules:    rules,
		uow:      uow,
		now:      defaultClock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *ruleService) List(ctx context.Context, enabledOnly bool) ([]*domain.Rule, error) {
	return s.rules.List(ctx, enabledOnly)
}

func (s *ruleService) GetByID(ctx context.Context, id string) (*domain.Rule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *ruleService) Create(ctx context.Context, r *domain.Rule) (err error) {
	defer observe(ctx, s.observer, "rule.create", time.Now(), &err, map[string]any{"rule_id": r.ID})

	if err := r.Validate(); err != nil {
		return err
	}
	now := s.now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := s.rules.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("rule %s already exists: %w", r.ID, err)
		}
		return err
	}
	return nil
}

func (s *ruleService) Update(ctx context.Context, r *domain.Rule) (err error) {
	defer observe(ctx, s.observer, "rule.update", time.Now(), &err, map[string]any{"rule_id": r.ID})

	if err := r.Validate(); err != nil {
		return err
	}
	r.UpdatedAt = s.now()
	return s.rules.Update(ctx, r)
}

func (s *ruleService) SetEnabled(ctx context.Context, id string, enabled bool) (rule *domain.Rule, err error) {
	defer observe(ctx, s.observer, "rule.set_enabled", time.Now(), &err, map[string]any{"rule_id": id, "enabled": enabled})

	rule, err = s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule.Enabled == enabled {
		return rule, nil
	}
	rule.Enabled = enabled
	rule.UpdatedAt = s.now()
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *ruleService) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, s.observer, "rule.delete", time.Now(), &err, map[string]any{"rule_id": id})
	return s.rules.Delete(ctx, id)
}

func (s *ruleService) SeedDefaults(ctx context.Context) (n int, err error) {
	defer observe(ctx, s.observer, "rule.seed", time.Now(), &err, nil)

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		rules := repository.NewSQLiteRuleRepo(tx)
		for _, r := range catalog.Defaults() {
			_, err := rules.GetByID(ctx, r.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			r.CreatedAt = now
			r.UpdatedAt = now
			if err := rules.Create(ctx, r); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *ruleService) EnsureCatalog(ctx context.Context, rulesFile string) (int, error) {
	existing, err := s.rules.List(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	if rulesFile == "" {
		return s.SeedDefaults(ctx)
	}
	rules, err := catalog.LoadFile(rulesFile)
	if err != nil {
		return 0, err
	}
	res, err := s.upsert(ctx, rules)
	if err != nil {
		return 0, err
	}
	return res.Created, nil
}

// Import applies a YAML rule file atomically: every rule is created or
// replaced, or nothing is written.
func (s *ruleService) Import(ctx context.Context, r io.Reader) (res *ImportResult, err error) {
	defer observe(ctx, s.observer, "rule.import", time.Now(), &err, nil)

	rules, err := catalog.Parse(r)
	if err != nil {
		return nil, err
	}
	return s.upsert(ctx, rules)
}

func (s *ruleService) upsert(ctx context.Context, incoming []*domain.Rule) (*ImportResult, error) {
	res := &ImportResult{}
	now := s.now()
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		rules := repository.NewSQLiteRuleRepo(tx)
		for _, r := range incoming {
			existing, err := rules.GetByID(ctx, r.ID)
			switch {
			case err == nil:
				r.CreatedAt = existing.CreatedAt
				r.UpdatedAt = now
				if err := rules.Update(ctx, r); err != nil {
					return err
				}
				res.Updated++
			case errors.Is(err, repository.ErrNotFound):
				r.CreatedAt = now
				r.UpdatedAt = now
				if err := rules.Create(ctx, r); err != nil {
					return err
				}
				res.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ruleService) Export(ctx context.Context, w io.Writer) error {
	rules, err := s.rules.List(ctx, false)
	if err != nil {
		return err
	}
	return catalog.Export(w, rules)
}
