package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
)

// FormatWorkItemList renders items with their age and deadline at now.
// names maps technician IDs to display names; unknown IDs are truncated.
func FormatWorkItemList(items []*domain.WorkItem, names map[string]string, now time.Time) string {
	headers := []string{"ID", "TITLE", "PRIORITY", "STATUS", "ASSIGNEE", "AGE", "DEADLINE", "VIOL"}
	rows := make([][]string, 0, len(items))
	for _, w := range items {
		rows = append(rows, []string{
			TruncID(w.ID),
			w.Title,
			PriorityPill(w.Priority),
			StatusPill(w.Status),
			assignee(w.AssignedTechnicianID, names),
			Dim(Age(w.CreatedAt, now)),
			Deadline(w.DueDeadline, now),
			violationCount(w.ViolationCount),
		})
	}
	return RenderTable(headers, rows)
}

// FormatWorkItemDetail renders every tracked field of one item.
func FormatWorkItemDetail(w *domain.WorkItem, names map[string]string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", StyleBold.Render(w.Title))
	fmt.Fprintf(&b, "%s %s\n\n", Dim("id"), w.ID)
	field := func(label, value string) {
		fmt.Fprintf(&b, "%-14s %s\n", Dim(label), value)
	}
	field("priority", PriorityPill(w.Priority))
	field("status", StatusPill(w.Status))
	field("assignee", assignee(w.AssignedTechnicianID, names))
	field("skill", OrDash(w.RequiredSkill))
	field("location", OrDash(w.Location))
	field("created", Timestamp(w.CreatedAt)+" "+Dim("("+Age(w.CreatedAt, now)+")"))
	field("deadline", Deadline(w.DueDeadline, now))
	field("violations", violationCount(w.ViolationCount))
	if w.EscalatedTo != nil {
		field("escalated to", StyleRed.Render(*w.EscalatedTo)+" "+Dim(Timestamp(*w.EscalatedAt)))
	}
	if w.CompletedAt != nil {
		field("completed", Timestamp(*w.CompletedAt))
	}
	return RenderBox("Work Item", strings.TrimRight(b.String(), "\n"))
}

// FormatChangeEffects summarizes what rule evaluation did after a change.
// It returns an empty string when nothing happened.
func FormatChangeEffects(e contract.ChangeEffects) string {
	var lines []string
	if e.ViolationsDetected > 0 {
		lines = append(lines, StyleRed.Render(fmt.Sprintf("▲ %d SLA violation(s) detected", e.ViolationsDetected)))
	}
	if e.ActionsDispatched > 0 {
		lines = append(lines, fmt.Sprintf("  %d action(s) dispatched", e.ActionsDispatched))
	}
	if e.ActionsFailed > 0 {
		lines = append(lines, StyleYellow.Render(fmt.Sprintf("  %d action(s) failed", e.ActionsFailed)))
	}
	if e.Resolved > 0 {
		lines = append(lines, StyleGreen.Render(fmt.Sprintf("✔ %d violation(s) resolved", e.Resolved)))
	}
	if e.PriorityNotified {
		lines = append(lines, Dim("  priority change notified"))
	}
	return strings.Join(lines, "\n")
}

func assignee(id *string, names map[string]string) string {
	if id == nil {
		return StyleDim.Render("unassigned")
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return TruncID(*id)
}

func violationCount(n int) string {
	if n == 0 {
		return Dim("0")
	}
	return StyleRed.Render(fmt.Sprint(n))
}
