package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// Rule expressions are the compact flag form of conditions and actions:
//
//	priority=critical   status=pending,scheduled   elapsed>=60
//	status_elapsed>=30  overdue
//
//	escalate=manager    notify=admin,supervisor    reassign=best_available
//	boost=high          log=free text
//
// Parsing only shapes the spec; semantic checks happen in RuleSpec.ToRule.

func parseConditionExpr(expr string) (domain.ConditionSpec, error) {
	expr = strings.TrimSpace(expr)
	if expr == "overdue" {
		return domain.ConditionSpec{Type: string(domain.ConditionIsOverdue)}, nil
	}
	if key, val, ok := strings.Cut(expr, ">="); ok {
		mins, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return domain.ConditionSpec{}, fmt.Errorf("condition %q: minutes must be an integer", expr)
		}
		spec := domain.ConditionSpec{Type: string(domain.ConditionElapsedMinutes), Minutes: mins}
		switch strings.TrimSpace(key) {
		case "elapsed":
			spec.Anchor = string(domain.AnchorCreated)
		case "status_elapsed":
			spec.Anchor = string(domain.AnchorStatusChanged)
		default:
			return domain.ConditionSpec{}, fmt.Errorf("condition %q: expected elapsed>=N or status_elapsed>=N", expr)
		}
		return spec, nil
	}
	key, val, ok := strings.Cut(expr, "=")
	if !ok {
		return domain.ConditionSpec{}, fmt.Errorf("condition %q: expected key=value", expr)
	}
	switch strings.TrimSpace(key) {
	case "priority":
		return domain.ConditionSpec{Type: string(domain.ConditionPriorityEquals), Priority: strings.TrimSpace(val)}, nil
	case "status":
		return domain.ConditionSpec{Type: string(domain.ConditionStatusIn), Statuses: splitList(val)}, nil
	default:
		return domain.ConditionSpec{}, fmt.Errorf("condition %q: unknown key %q", expr, key)
	}
}

func parseActionExpr(expr string) (domain.ActionSpec, error) {
	key, val, ok := strings.Cut(strings.TrimSpace(expr), "=")
	if !ok {
		return domain.ActionSpec{}, fmt.Errorf("action %q: expected key=value", expr)
	}
	val = strings.TrimSpace(val)
	switch strings.TrimSpace(key) {
	case "escalate":
		return domain.ActionSpec{Type: string(domain.ActionEscalate), Target: val}, nil
	case "notify":
		return domain.ActionSpec{Type: string(domain.ActionNotify), Recipients: splitList(val)}, nil
	case "reassign":
		return domain.ActionSpec{Type: string(domain.ActionReassign), Criteria: val}, nil
	case "boost":
		return domain.ActionSpec{Type: string(domain.ActionPriorityBoost), Priority: val}, nil
	case "log":
		return domain.ActionSpec{Type: string(domain.ActionLog), Message: val}, nil
	default:
		return domain.ActionSpec{}, fmt.Errorf("action %q: unknown key %q", expr, key)
	}
}

func parseConditionExprs(exprs []string) ([]domain.ConditionSpec, error) {
	out := make([]domain.ConditionSpec, 0, len(exprs))
	for _, e := range exprs {
		c, err := parseConditionExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func parseActionExprs(exprs []string) ([]domain.ActionSpec, error) {
	out := make([]domain.ActionSpec, 0, len(exprs))
	for _, e := range exprs {
		a, err := parseActionExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitExprLines splits multi-line form input into expressions, skipping blanks.
func splitExprLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
