package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/sweep"
)

// SweepTrigger is the part of the sweep scheduler the service needs.
type SweepTrigger interface {
	Trigger(ctx context.Context) (*sweep.Report, error)
	State() sweep.Phase
}

type sweepService struct {
	trigger  SweepTrigger
	observer UseCaseObserver
}

func NewSweepService(trigger SweepTrigger, observers ...UseCaseObserver) SweepService {
	return &sweepService{trigger: trigger, observer: useCaseObserverOrNoop(observers)}
}

func (s *sweepService) Run(ctx context.Context) *contract.SweepResult {
	start := time.Now()
	rep, err := s.trigger.Trigger(ctx)
	res := sweepResult(rep, err)
	var obsErr error
	if res.Outcome == contract.OutcomeFailed {
		obsErr = err
	}
	observe(ctx, s.observer, "sweep.run", start, &obsErr, map[string]any{
		"outcome":    string(res.Outcome),
		"violations": res.ViolationsDetected,
		"resolved":   res.Resolved,
		"actions":    res.ActionsDispatched,
	})
	return res
}

func (s *sweepService) State() sweep.Phase {
	return s.trigger.State()
}

func sweepResult(rep *sweep.Report, err error) *contract.SweepResult {
	res := &contract.SweepResult{}
	if rep != nil {
		res.StartedAt = rep.StartedAt
		res.DurationMs = rep.Duration.Milliseconds()
		res.ItemsScanned = rep.ItemsScanned
		res.RulesEvaluated = rep.RulesEvaluated
		res.ViolationsDetected = rep.ViolationsDetected
		res.Reopened = rep.Reopened
		res.Resolved = rep.Resolved
		res.ActionsDispatched = rep.ActionsDispatched
		res.ActionsFailed = rep.ActionsFailed
		res.FailedPhase = string(rep.FailedPhase)
	}

	switch {
	case errors.Is(err, sweep.ErrSweepInProgress), errors.Is(err, sweep.ErrLeaseHeld):
		res.Outcome = contract.OutcomeNoAction
		res.Reason = err.Error()
	case err != nil:
		res.Outcome = contract.OutcomeFailed
		res.Reason = err.Error()
	case res.ViolationsDetected+res.Reopened+res.Resolved+res.ActionsDispatched == 0:
		res.Outcome = contract.OutcomeNoAction
		res.Reason = "no violations detected or resolved"
	default:
		res.Outcome = contract.OutcomeActionTaken
		res.Reason = fmt.Sprintf("%d violations detected, %d resolved, %d actions dispatched",
			res.ViolationsDetected, res.Resolved, res.ActionsDispatched)
	}
	return res
}
