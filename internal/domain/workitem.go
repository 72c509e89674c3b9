package domain

import (
	"fmt"
	"time"
)

type WorkItem struct {
	ID            string
	Title         string
	Priority      Priority
	Status        WorkItemStatus
	RequiredSkill string
	Location      string

	AssignedTechnicianID *string
	DueDeadline          *time.Time

	// Escalation bookkeeping
	ViolationCount    int
	EscalatedTo       *string
	EscalatedAt       *time.Time
	PriorityBoostedAt *time.Time

	StatusChangedAt *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (w *WorkItem) IsTerminal() bool { return w.Status.IsTerminal() }

// IsOverdue reports whether the deadline has passed on a non-terminal item.
// Items without a deadline are never overdue.
func (w *WorkItem) IsOverdue(now time.Time) bool {
	if w.DueDeadline == nil || w.IsTerminal() {
		return false
	}
	return now.After(*w.DueDeadline)
}

// AnchorTime returns the instant elapsed-time conditions measure from.
// The status_changed anchor falls back to creation when no transition was recorded.
func (w *WorkItem) AnchorTime(anchor ElapsedAnchor) time.Time {
	if anchor == AnchorStatusChanged && w.StatusChangedAt != nil && w.StatusChangedAt.After(w.CreatedAt) {
		return *w.StatusChangedAt
	}
	return w.CreatedAt
}

// ElapsedMinutes is the whole minutes between the anchor and now.
func (w *WorkItem) ElapsedMinutes(anchor ElapsedAnchor, now time.Time) int {
	d := now.Sub(w.AnchorTime(anchor))
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// CompletedOnTime reports a completion at or before the deadline. A completed
// item without a deadline counts as on time.
func (w *WorkItem) CompletedOnTime() bool {
	if w.Status != StatusCompleted || w.CompletedAt == nil {
		return false
	}
	if w.DueDeadline == nil {
		return true
	}
	return !w.CompletedAt.After(*w.DueDeadline)
}

// ResponseMinutes is the time from creation to completion.
func (w *WorkItem) ResponseMinutes() (float64, bool) {
	if w.CompletedAt == nil {
		return 0, false
	}
	return w.CompletedAt.Sub(w.CreatedAt).Minutes(), true
}

// TransitionTo moves the item to a new status, stamping the transition time
// and the completion time when the item completes.
func (w *WorkItem) TransitionTo(status WorkItemStatus, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	if w.IsTerminal() {
		return fmt.Errorf("work item %s is already %s", w.ID, w.Status)
	}
	if status == w.Status {
		return nil
	}
	w.Status = status
	w.StatusChangedAt = &now
	if status == StatusCompleted {
		w.CompletedAt = &now
	}
	w.UpdatedAt = now
	return nil
}

// RaisePriority lifts the priority to p. It never lowers it and reports
// whether anything changed.
func (w *WorkItem) RaisePriority(p Priority, now time.Time) bool {
	if p.Rank() <= w.Priority.Rank() {
		return false
	}
	w.Priority = p
	w.PriorityBoostedAt = &now
	w.UpdatedAt = now
	return true
}

// Escalate records the escalation target. It reports whether the item was
// already escalated on the same calendar day, in which case callers skip the
// escalation notification.
func (w *WorkItem) Escalate(target string, now time.Time) (sameDay bool) {
	if w.EscalatedAt != nil && SameDay(*w.EscalatedAt, now) {
		sameDay = true
	}
	w.EscalatedTo = &target
	w.EscalatedAt = &now
	w.UpdatedAt = now
	return sameDay
}

func (w *WorkItem) AssignTo(technicianID string, now time.Time) {
	w.AssignedTechnicianID = &technicianID
	w.UpdatedAt = now
}

// SameDay compares calendar days in UTC.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DayKey formats the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
