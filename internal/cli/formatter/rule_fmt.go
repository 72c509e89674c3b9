package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// FormatRuleList renders the catalog in evaluation order.
func FormatRuleList(rules []*domain.Rule) string {
	headers := []string{"ID", "NAME", "SEVERITY", "PRIO", "STATE", "WHEN"}
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{
			StyleBold.Render(r.ID),
			r.Name,
			SeverityBadge(r.Severity),
			strconv.Itoa(r.Priority),
			enabledPill(r.Enabled),
			Dim(describeConditions(r.Conditions)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatRuleDetail renders one rule with its conditions and actions.
func FormatRuleDetail(r *domain.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", StyleBold.Render(r.Name), SeverityBadge(r.Severity), enabledPill(r.Enabled))
	fmt.Fprintf(&b, "%s %s   %s %d\n", Dim("id"), r.ID, Dim("priority"), r.Priority)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", StyleFg.Render(r.Description))
	}
	b.WriteString("\n" + Header("When") + "\n")
	for _, c := range r.Conditions {
		fmt.Fprintf(&b, "  • %s\n", DescribeCondition(c))
	}
	b.WriteString("\n" + Header("Then") + "\n")
	for i, a := range r.Actions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, DescribeAction(a))
	}
	return RenderBox("Rule", strings.TrimRight(b.String(), "\n"))
}

// DescribeCondition renders a condition as a short phrase.
func DescribeCondition(c domain.Condition) string {
	switch c := c.(type) {
	case domain.PriorityEquals:
		return "priority is " + string(c.Priority)
	case domain.StatusIn:
		names := make([]string, len(c.Statuses))
		for i, s := range c.Statuses {
			names[i] = string(s)
		}
		return "status in " + strings.Join(names, ", ")
	case domain.ElapsedMinutes:
		if c.Anchor == domain.AnchorStatusChanged {
			return fmt.Sprintf("%s since last status change", FormatMinutes(c.Threshold))
		}
		return fmt.Sprintf("%s since creation", FormatMinutes(c.Threshold))
	case domain.IsOverdue:
		return "past due deadline"
	default:
		return string(c.Kind())
	}
}

// DescribeAction renders an action as a short imperative phrase.
func DescribeAction(a domain.Action) string {
	switch a := a.(type) {
	case domain.Escalate:
		return "escalate to " + string(a.Target)
	case domain.Notify:
		return "notify " + strings.Join(a.Recipients, ", ")
	case domain.Reassign:
		return "reassign (" + string(a.Criteria) + ")"
	case domain.PriorityBoost:
		return "raise priority to " + string(a.Priority)
	case domain.LogMessage:
		return fmt.Sprintf("log %q", a.Message)
	default:
		return string(a.Kind())
	}
}

func describeConditions(cs []domain.Condition) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = DescribeCondition(c)
	}
	return strings.Join(parts, " and ")
}

func enabledPill(enabled bool) string {
	if enabled {
		return StyleGreen.Render("● enabled")
	}
	return StyleDim.Render("○ disabled")
}
