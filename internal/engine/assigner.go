package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/scheduler"
)

// ErrWorkItemClosed rejects assignment of completed or cancelled items.
var ErrWorkItemClosed = errors.New("work item is closed")

// Assigner runs the scorer and applies its choice inside one transaction, so
// the capacity check and the assignment write cannot interleave with another
// assignment.
type Assigner struct {
	uow db.UnitOfWork
	now func() time.Time
}

func NewAssigner(uow db.UnitOfWork, now func() time.Time) *Assigner {
	if now == nil {
		now = defaultClock
	}
	return &Assigner{uow: uow, now: now}
}

// Assign selects the best technician for the item, assigns it and records the
// decision. scheduler.ErrNoEligibleCandidate leaves the item untouched.
func (a *Assigner) Assign(ctx context.Context, itemID string, criteria domain.ReassignCriteria, assignedBy string) (*domain.AssignmentDecision, error) {
	var decision *domain.AssignmentDecision
	err := a.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		techs := repository.NewSQLiteTechnicianRepo(tx)
		decisions := repository.NewSQLiteAssignmentDecisionRepo(tx)

		item, err := items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item.IsTerminal() {
			return fmt.Errorf("work item %s is %s: %w", item.ID, item.Status, ErrWorkItemClosed)
		}

		pool, err := loadPool(ctx, items, techs, item)
		if err != nil {
			return err
		}
		sel, err := scheduler.SelectBest(item, pool, criteria)
		if err != nil {
			return err
		}

		now := a.now()
		decision = sel.Decision(item, assignedBy, now)
		item.AssignTo(decision.TechnicianID, now)
		if err := items.Update(ctx, item); err != nil {
			return err
		}
		return decisions.Create(ctx, decision)
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// loadPool derives each active technician's open assigned count from the
// work item store. The item being reassigned is not counted against its
// current technician.
func loadPool(ctx context.Context, items repository.WorkItemRepo, techs repository.TechnicianRepo, item *domain.WorkItem) ([]domain.TechnicianLoad, error) {
	list, err := techs.List(ctx, true)
	if err != nil {
		return nil, err
	}
	counts, err := items.AssignedCounts(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]domain.TechnicianLoad, 0, len(list))
	for _, t := range list {
		n := counts[t.ID]
		if item.AssignedTechnicianID != nil && *item.AssignedTechnicianID == t.ID && n > 0 {
			n--
		}
		pool = append(pool, domain.TechnicianLoad{Technician: t, AssignedCount: n})
	}
	return pool, nil
}

func defaultClock() time.Time { return time.Now().UTC() }
