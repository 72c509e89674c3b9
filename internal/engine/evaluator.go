// Package engine evaluates SLA rules against work items and dispatches the
// actions of matching rules.
package engine

import (
	"slices"
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// DefaultRepeatOffenderThreshold is the violation count above which a match
// is reported one severity level higher.
const DefaultRepeatOffenderThreshold = 2

type MatchResult struct {
	Matched        bool
	Severity       domain.Severity
	RepeatOffender bool
}

// Evaluator is a pure rule matcher. It performs no I/O.
type Evaluator struct {
	repeatThreshold int
}

func NewEvaluator(repeatOffenderThreshold int) *Evaluator {
	if repeatOffenderThreshold < 0 {
		repeatOffenderThreshold = DefaultRepeatOffenderThreshold
	}
	return &Evaluator{repeatThreshold: repeatOffenderThreshold}
}

// Evaluate reports whether every condition of the rule holds for the item.
// A rule without conditions never matches.
func (e *Evaluator) Evaluate(item *domain.WorkItem, rule *domain.Rule, now time.Time) MatchResult {
	if item == nil || rule == nil || len(rule.Conditions) == 0 {
		return MatchResult{}
	}
	for _, c := range rule.Conditions {
		if !ConditionHolds(c, item, now) {
			return MatchResult{}
		}
	}
	res := MatchResult{Matched: true, Severity: rule.Severity}
	if item.ViolationCount > e.repeatThreshold {
		res.Severity = rule.Severity.Bump()
		res.RepeatOffender = true
	}
	return res
}

// ConditionHolds evaluates one condition. Unknown condition types fail closed.
func ConditionHolds(c domain.Condition, item *domain.WorkItem, now time.Time) bool {
	switch v := c.(type) {
	case domain.PriorityEquals:
		return item.Priority == v.Priority
	case domain.StatusIn:
		return slices.Contains(v.Statuses, item.Status)
	case domain.ElapsedMinutes:
		return item.ElapsedMinutes(v.Anchor, now) >= v.Threshold
	case domain.IsOverdue:
		return item.IsOverdue(now)
	default:
		return false
	}
}
