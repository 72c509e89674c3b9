package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/google/uuid"
)

// workItemService is the only writer of work item status and priority. Every
// such change is committed first and then passed to the change hook.
type workItemService struct {
	items    repository.WorkItemRepo
	uow      db.UnitOfWork
	hook     ChangeHook
	now      Clock
	observer UseCaseObserver
}

func NewWorkItemService(items repository.WorkItemRepo, uow db.UnitOfWork, hook ChangeHook, observers ...UseCaseObserver) WorkItemService {
	return &workItemService{
		items:    items,
		uow:      uow,
		hook:     hook,
		now:      defaultClock,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *workItemService) Create(ctx context.Context, w *domain.WorkItem) (res *contract.ChangeResult, err error) {
	defer observe(ctx, s.observer, "work_item.create", time.Now(), &err, map[string]any{"priority": string(w.Priority)})

	if strings.TrimSpace(w.Title) == "" {
		return nil, fmt.Errorf("work item title must not be blank")
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if w.Priority == "" {
		w.Priority = domain.PriorityMedium
	}
	if !w.Priority.Valid() {
		return nil, fmt.Errorf("invalid priority %q", w.Priority)
	}
	if w.Status == "" {
		w.Status = domain.StatusPending
	}
	if !w.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", w.Status)
	}
	now := s.now()
	w.CreatedAt = now
	w.UpdatedAt = now
	if err := s.items.Create(ctx, w); err != nil {
		return nil, err
	}
	return s.afterChange(ctx, nil, w)
}

func (s *workItemService) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *workItemService) List(ctx context.Context, f repository.WorkItemFilter) ([]*domain.WorkItem, error) {
	return s.items.List(ctx, f)
}

func (s *workItemService) ChangeStatus(ctx context.Context, id string, status domain.WorkItemStatus) (res *contract.ChangeResult, err error) {
	defer observe(ctx, s.observer, "work_item.change_status", time.Now(), &err, map[string]any{"work_item_id": id, "status": string(status)})

	before, after, err := s.mutate(ctx, id, func(w *domain.WorkItem, now time.Time) (bool, error) {
		if w.Status == status {
			return false, nil
		}
		return true, w.TransitionTo(status, now)
	})
	if err != nil {
		return nil, err
	}
	if before == nil {
		return &contract.ChangeResult{WorkItem: after}, nil
	}
	return s.afterChange(ctx, before, after)
}

// ChangePriority sets the priority in either direction. Only a rise notifies.
func (s *workItemService) ChangePriority(ctx context.Context, id string, p domain.Priority) (res *contract.ChangeResult, err error) {
	defer observe(ctx, s.observer, "work_item.change_priority", time.Now(), &err, map[string]any{"work_item_id": id, "priority": string(p)})

	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %q", p)
	}
	before, after, err := s.mutate(ctx, id, func(w *domain.WorkItem, now time.Time) (bool, error) {
		if w.IsTerminal() {
			return false, fmt.Errorf("work item %s is already %s", w.ID, w.Status)
		}
		if w.Priority == p {
			return false, nil
		}
		w.Priority = p
		w.UpdatedAt = now
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if before == nil {
		return &contract.ChangeResult{WorkItem: after}, nil
	}
	return s.afterChange(ctx, before, after)
}

// mutate applies fn inside one transaction. before is nil when fn reports no
// change, in which case nothing is written.
func (s *workItemService) mutate(ctx context.Context, id string, fn func(w *domain.WorkItem, now time.Time) (bool, error)) (before, after *domain.WorkItem, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		w, err := items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		snapshot := *w
		changed, err := fn(w, s.now())
		if err != nil || !changed {
			after = w
			return err
		}
		before = &snapshot
		after = w
		return items.Update(ctx, w)
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func (s *workItemService) afterChange(ctx context.Context, before, after *domain.WorkItem) (*contract.ChangeResult, error) {
	res := &contract.ChangeResult{WorkItem: after}
	if s.hook == nil {
		return res, nil
	}
	fx, err := s.hook.OnWorkItemChanged(ctx, before, after)
	res.Effects = fx
	if err != nil {
		return res, fmt.Errorf("work item %s changed but rule evaluation failed: %w", after.ID, err)
	}
	if fx.ActionsDispatched > 0 {
		fresh, err := s.items.GetByID(ctx, after.ID)
		if err != nil {
			return res, err
		}
		res.WorkItem = fresh
	}
	return res, nil
}
