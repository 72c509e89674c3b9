package domain

import (
	"time"

	"github.com/google/uuid"
)

// Violation records one rule matching one work item. DedupKey allows a single
// record per item, rule and UTC day.
type Violation struct {
	ID         string
	WorkItemID string
	RuleID     string
	Severity   Severity
	Data       ViolationData
	DedupKey   string
	Resolved   bool
	ResolvedAt *time.Time
	// DispatchedAt is set when every action of the rule has been logged.
	DispatchedAt *time.Time
	CreatedAt    time.Time
}

// ViolationData is a snapshot of the item at detection time.
type ViolationData struct {
	RuleName       string     `json:"rule_name"`
	Priority       Priority   `json:"priority"`
	Status         string     `json:"status"`
	ElapsedMinutes int        `json:"elapsed_minutes"`
	DueDeadline    *time.Time `json:"due_deadline,omitempty"`
	ViolationCount int        `json:"violation_count"`
	RepeatOffender bool       `json:"repeat_offender,omitempty"`
}

func DedupKey(workItemID, ruleID string, at time.Time) string {
	return workItemID + "|" + ruleID + "|" + DayKey(at)
}

func NewViolation(item *WorkItem, rule *Rule, severity Severity, now time.Time) *Violation {
	return &Violation{
		ID:         uuid.New().String(),
		WorkItemID: item.ID,
		RuleID:     rule.ID,
		Severity:   severity,
		Data: ViolationData{
			RuleName:       rule.Name,
			Priority:       item.Priority,
			Status:         string(item.Status),
			ElapsedMinutes: item.ElapsedMinutes(AnchorCreated, now),
			DueDeadline:    item.DueDeadline,
			ViolationCount: item.ViolationCount,
			RepeatOffender: severity != rule.Severity,
		},
		DedupKey:  DedupKey(item.ID, rule.ID, now),
		CreatedAt: now,
	}
}

// Pending reports whether the rule's actions still have to run for v.
func (v *Violation) Pending() bool {
	return !v.Resolved && v.DispatchedAt == nil
}

func (v *Violation) Resolve(now time.Time) {
	v.Resolved = true
	v.ResolvedAt = &now
}

// DailyViolationStat counts violations created on one UTC day at one severity.
type DailyViolationStat struct {
	Day      string
	Severity Severity
	Count    int
}
