package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
)

// FormatAssignmentResult renders one assignment with its ranked alternatives.
// names maps technician IDs to display names.
func FormatAssignmentResult(r *contract.AssignmentResult, names map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", TruncID(r.WorkItemID), OutcomePill(r.Outcome), r.Reason)
	if r.Decision == nil {
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString("\n" + formatFactors(r.Decision.Factors) + "\n")
	if len(r.Decision.Alternatives) > 0 {
		b.WriteString("\n" + formatCandidates(r.Decision.TechnicianID, r.Decision.Alternatives, names))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatBulkAssignment renders one line per item and the tallies.
func FormatBulkAssignment(r *contract.BulkAssignmentResult) string {
	headers := []string{"ITEM", "OUTCOME", "REASON"}
	rows := make([][]string, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, []string{TruncID(res.WorkItemID), OutcomePill(res.Outcome), res.Reason})
	}
	summary := fmt.Sprintf("%s assigned, %s skipped, %s failed",
		StyleGreen.Render(fmt.Sprint(r.Assigned)),
		Dim(fmt.Sprint(r.Skipped)),
		countCell(r.Failed, StyleRed.Render))
	return RenderTable(headers, rows) + summary
}

// FormatDecisionHistory renders an item's assignment decisions, oldest first.
func FormatDecisionHistory(ds []*domain.AssignmentDecision, names map[string]string) string {
	headers := []string{"TIME", "TECHNICIAN", "SCORE", "CRITERIA", "BY", "POOL"}
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, []string{
			Timestamp(d.CreatedAt),
			name(d.TechnicianID, names),
			fmt.Sprintf("%.3f", d.Score),
			d.Factors.Criteria,
			Dim(d.AssignedBy),
			fmt.Sprintf("%d/%d", d.Factors.PoolSize-d.Factors.Excluded, d.Factors.PoolSize),
		})
	}
	return RenderTable(headers, rows)
}

func formatFactors(f domain.DecisionFactors) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %.3f\n", Dim("specialization"), f.Specialization)
	fmt.Fprintf(&b, "%-16s %.3f %s\n", Dim("headroom"), f.Headroom, Dim(fmt.Sprintf("(%d/%d assigned)", f.AssignedCount, f.MaxDailyTasks)))
	fmt.Fprintf(&b, "%-16s %.3f", Dim("location"), f.LocationMatch)
	if f.Excluded > 0 {
		fmt.Fprintf(&b, "\n%s", Dim(fmt.Sprintf("%d of %d technicians excluded", f.Excluded, f.PoolSize)))
	}
	return b.String()
}

func formatCandidates(chosen string, cs []domain.CandidateScore, names map[string]string) string {
	headers := []string{"", "TECHNICIAN", "SCORE", "LOAD"}
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		mark := " "
		if c.TechnicianID == chosen {
			mark = StyleGreen.Render("▶")
		}
		rows = append(rows, []string{mark, name(c.TechnicianID, names), fmt.Sprintf("%.3f", c.Score), fmt.Sprint(c.AssignedCount)})
	}
	return RenderTable(headers, rows)
}

func name(id string, names map[string]string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return TruncID(id)
}
