// Package catalog holds the built-in SLA rule set and reads and writes rule
// files in YAML.
package catalog

import (
	"fmt"

	"github.com/alexanderramin/slaguard/internal/domain"
)

func statuses(ss ...domain.WorkItemStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

var defaultSpecs = []domain.RuleSpec{
	{
		ID:          "critical_immediate",
		Name:        "Critical tasks - immediate response",
		Description: "Critical work waiting 30 minutes without being started",
		Severity:    string(domain.SeverityCritical),
		Priority:    100,
		Conditions: []domain.ConditionSpec{
			{Type: string(domain.ConditionPriorityEquals), Priority: string(domain.PriorityCritical)},
			{Type: string(domain.ConditionStatusIn), Statuses: statuses(domain.StatusPending, domain.StatusScheduled)},
			{Type: string(domain.ConditionElapsedMinutes), Anchor: string(domain.AnchorCreated), Minutes: 30},
		},
		Actions: []domain.ActionSpec{
			{Type: string(domain.ActionEscalate), Target: string(domain.EscalateSupervisor)},
			{Type: string(domain.ActionNotify), Recipients: []string{domain.RecipientAdmin, domain.RecipientManager}},
			{Type: string(domain.ActionReassign), Criteria: string(domain.CriteriaBestAvailable)},
		},
	},
	{
		ID:          "overdue_tasks",
		Name:        "Overdue tasks",
		Description: "Open work past its due deadline",
		Severity:    string(domain.SeverityHigh),
		Priority:    90,
		Conditions: []domain.ConditionSpec{
			{Type: string(domain.ConditionIsOverdue)},
			{Type: string(domain.ConditionStatusIn), Statuses: statuses(domain.StatusPending, domain.StatusScheduled, domain.StatusInProgress)},
		},
		Actions: []domain.ActionSpec{
			{Type: string(domain.ActionEscalate), Target: string(domain.EscalateManager)},
			{Type: string(domain.ActionNotify), Recipients: []string{domain.RecipientAdmin, domain.RecipientClient}},
			{Type: string(domain.ActionPriorityBoost), Priority: string(domain.PriorityHigh)},
		},
	},
	{
		ID:          "high_priority_4h",
		Name:        "High priority tasks - 4 hours",
		Description: "High priority work waiting four hours",
		Severity:    string(domain.SeverityHigh),
		Priority:    80,
		Conditions: []domain.ConditionSpec{
			{Type: string(domain.ConditionPriorityEquals), Priority: string(domain.PriorityHigh)},
			{Type: string(domain.ConditionStatusIn), Statuses: statuses(domain.StatusPending, domain.StatusScheduled)},
			{Type: string(domain.ConditionElapsedMinutes), Anchor: string(domain.AnchorCreated), Minutes: 240},
		},
		Actions: []domain.ActionSpec{
			{Type: string(domain.ActionNotify), Recipients: []string{domain.RecipientManager}},
			{Type: string(domain.ActionReassign), Criteria: string(domain.CriteriaAvailableSpecialist)},
		},
	},
	{
		ID:          "medium_priority_24h",
		Name:        "Medium priority tasks - 24 hours",
		Description: "Medium priority work waiting a full day",
		Severity:    string(domain.SeverityMedium),
		Priority:    60,
		Conditions: []domain.ConditionSpec{
			{Type: string(domain.ConditionPriorityEquals), Priority: string(domain.PriorityMedium)},
			{Type: string(domain.ConditionStatusIn), Statuses: statuses(domain.StatusPending, domain.StatusScheduled)},
			{Type: string(domain.ConditionElapsedMinutes), Anchor: string(domain.AnchorCreated), Minutes: 1440},
		},
		Actions: []domain.ActionSpec{
			{Type: string(domain.ActionNotify), Recipients: []string{domain.RecipientAssignedTechnician}},
			{Type: string(domain.ActionLog), Message: "task approaching SLA deadline"},
		},
	},
}

// Defaults returns a fresh copy of the built-in rules, highest priority first.
func Defaults() []*domain.Rule {
	out := make([]*domain.Rule, 0, len(defaultSpecs))
	for _, s := range defaultSpecs {
		r, err := s.ToRule()
		if err != nil {
			panic(fmt.Sprintf("built-in rule %s: %v", s.ID, err))
		}
		out = append(out, r)
	}
	return out
}

// Default returns the built-in rule with the given id.
func Default(id string) (*domain.Rule, bool) {
	for _, r := range Defaults() {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}
