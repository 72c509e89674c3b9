package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/engine"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/scheduler"
)

type assignmentService struct {
	assigner  *engine.Assigner
	items     repository.WorkItemRepo
	decisions repository.AssignmentDecisionRepo
	locks     *engine.ItemLocks
	observer  UseCaseObserver
}

// NewAssignmentService runs the scorer directly, bypassing rule-triggered
// reassignment. locks must be the instance the dispatcher uses.
func NewAssignmentService(
	assigner *engine.Assigner,
	items repository.WorkItemRepo,
	decisions repository.AssignmentDecisionRepo,
	locks *engine.ItemLocks,
	observers ...UseCaseObserver,
) AssignmentService {
	return &assignmentService{
		assigner:  assigner,
		items:     items,
		decisions: decisions,
		locks:     locks,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func validCriteria(c domain.ReassignCriteria) bool {
	switch c {
	case domain.CriteriaBestAvailable, domain.CriteriaAvailableSpecialist:
		return true
	}
	return false
}

func (s *assignmentService) Assign(ctx context.Context, req contract.AssignmentRequest) *contract.AssignmentResult {
	start := time.Now()
	res, err := s.assign(ctx, req)
	observe(ctx, s.observer, "assignment.assign", start, &err, map[string]any{
		"work_item_id": req.WorkItemID,
		"outcome":      string(res.Outcome),
	})
	return res
}

// assign returns the non-business error separately so it can be observed.
func (s *assignmentService) assign(ctx context.Context, req contract.AssignmentRequest) (*contract.AssignmentResult, error) {
	res := &contract.AssignmentResult{WorkItemID: req.WorkItemID}
	if req.Criteria == "" {
		req.Criteria = domain.CriteriaBestAvailable
	}
	req.AssignedBy = domain.CoalesceStr(req.AssignedBy, contract.DefaultAssignedBy)
	if !validCriteria(req.Criteria) {
		err := &contract.RequestError{Code: contract.ErrInvalidCriteria, Message: fmt.Sprintf("unknown criteria %q", req.Criteria)}
		res.Outcome = contract.OutcomeFailed
		res.Reason = err.Error()
		return res, err
	}

	unlock := s.locks.Lock(req.WorkItemID)
	defer unlock()

	decision, err := s.assigner.Assign(ctx, req.WorkItemID, req.Criteria, req.AssignedBy)
	switch {
	case err == nil:
		res.Outcome = contract.OutcomeActionTaken
		res.Reason = fmt.Sprintf("assigned to %s (score %.3f)", decision.TechnicianID, decision.Score)
		res.Decision = decision
		return res, nil
	case errors.Is(err, scheduler.ErrNoEligibleCandidate):
		res.Outcome = contract.OutcomeNoAction
		res.Reason = engine.NoCandidateMessage
		return res, nil
	case errors.Is(err, engine.ErrWorkItemClosed):
		res.Outcome = contract.OutcomeNoAction
		res.Reason = err.Error()
		return res, nil
	default:
		res.Outcome = contract.OutcomeFailed
		res.Reason = err.Error()
		return res, err
	}
}

func (s *assignmentService) AssignBulk(ctx context.Context, req contract.BulkAssignmentRequest) (out *contract.BulkAssignmentResult, err error) {
	defer observe(ctx, s.observer, "assignment.bulk", time.Now(), &err, map[string]any{"requested": len(req.WorkItemIDs)})

	ids := req.WorkItemIDs
	if len(ids) == 0 {
		pending, err := s.items.ListUnassigned(ctx)
		if err != nil {
			return nil, err
		}
		sortByUrgency(pending)
		for _, w := range pending {
			ids = append(ids, w.ID)
		}
	}

	out = &contract.BulkAssignmentResult{}
	for _, id := range ids {
		single := contract.AssignmentRequest{WorkItemID: id, Criteria: req.Criteria, AssignedBy: req.AssignedBy}
		out.Add(*s.Assign(ctx, single))
	}
	return out, nil
}

func (s *assignmentService) History(ctx context.Context, workItemID string) ([]*domain.AssignmentDecision, error) {
	return s.decisions.ListByWorkItem(ctx, workItemID)
}

// sortByUrgency orders by priority descending, then oldest first.
func sortByUrgency(items []*domain.WorkItem) {
	slices.SortStableFunc(items, func(a, b *domain.WorkItem) int {
		if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
