package formatter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/slaguard/internal/domain"
)

func FormatViolationList(vs []*domain.Violation) string {
	headers := []string{"ID", "ITEM", "RULE", "SEVERITY", "ELAPSED", "DETECTED", "STATE"}
	rows := make([][]string, 0, len(vs))
	for _, v := range vs {
		state := StyleRed.Render("● open")
		if v.Resolved {
			state = StyleGreen.Render("✔ resolved")
		}
		rule := v.RuleID
		if v.Data.RepeatOffender {
			rule += StyleRed.Render(" ↻")
		}
		rows = append(rows, []string{
			TruncID(v.ID),
			TruncID(v.WorkItemID),
			rule,
			SeverityBadge(v.Severity),
			FormatMinutes(v.Data.ElapsedMinutes),
			Timestamp(v.CreatedAt),
			state,
		})
	}
	return RenderTable(headers, rows)
}

func FormatActionList(entries []*domain.ActionLogEntry) string {
	headers := []string{"TIME", "ITEM", "RULE", "ACTION", "BY", "RESULT", "MESSAGE"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		result := StyleGreen.Render("ok")
		if !e.Success {
			result = StyleRed.Render("failed")
		}
		rows = append(rows, []string{
			Timestamp(e.ExecutedAt),
			TruncID(e.WorkItemID),
			OrDash(deref(e.RuleID)),
			string(e.ActionType),
			Dim(e.ExecutedBy),
			result,
			e.Message,
		})
	}
	return RenderTable(headers, rows)
}

// FormatViolationStats renders one row per day, newest first, with a column
// per severity and a day total.
func FormatViolationStats(stats []domain.DailyViolationStat) string {
	type day struct {
		bySeverity map[domain.Severity]int
		total      int
	}
	days := make(map[string]*day)
	var keys []string
	for _, s := range stats {
		d, ok := days[s.Day]
		if !ok {
			d = &day{bySeverity: make(map[domain.Severity]int)}
			days[s.Day] = d
			keys = append(keys, s.Day)
		}
		d.bySeverity[s.Severity] += s.Count
		d.total += s.Count
	}
	slices.Sort(keys)
	slices.Reverse(keys)

	severities := []domain.Severity{domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow}
	headers := []string{"DAY"}
	for _, s := range severities {
		headers = append(headers, strings.ToUpper(string(s)))
	}
	headers = append(headers, "TOTAL")

	rows := make([][]string, 0, len(keys))
	var grand int
	for _, k := range keys {
		d := days[k]
		row := []string{k}
		for _, s := range severities {
			row = append(row, countCell(d.bySeverity[s], SeverityStyle(s).Render))
		}
		row = append(row, StyleBold.Render(fmt.Sprint(d.total)))
		rows = append(rows, row)
		grand += d.total
	}
	return RenderTable(headers, rows) + Dim(fmt.Sprintf("%d violation(s) over %d day(s)", grand, len(keys)))
}

func countCell(n int, render func(...string) string) string {
	if n == 0 {
		return Dim("0")
	}
	return render(fmt.Sprint(n))
}
