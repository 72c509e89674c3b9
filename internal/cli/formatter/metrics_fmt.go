package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/slaguard/internal/metrics"
)

// FormatMetricsReport renders the compliance figures for one period.
func FormatMetricsReport(r *metrics.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s → %s\n\n", Dim("period"), Timestamp(r.PeriodStart), Timestamp(r.PeriodEnd))
	line := func(label, value string) {
		fmt.Fprintf(&b, "%-22s %s\n", Dim(label), value)
	}
	line("items created", fmt.Sprint(r.ItemsCreated))
	line("completed", fmt.Sprint(r.Completed))
	line("completed on time", fmt.Sprint(r.CompletedOnTime))
	line("escalated", fmt.Sprint(r.Escalated))
	line("violations", fmt.Sprint(r.ViolationCount))
	b.WriteString("\n")
	if r.ComplianceRate != nil {
		line("SLA compliance", ComplianceBar(*r.ComplianceRate, 20))
	} else {
		line("SLA compliance", Percent(nil))
	}
	if r.AvgResponseTimeMinutes != nil {
		line("avg response", FormatMinutes(int(*r.AvgResponseTimeMinutes+0.5)))
	} else {
		line("avg response", Percent(nil))
	}
	line("escalation rate", Percent(r.EscalationRate))
	return RenderBox("SLA Metrics", strings.TrimRight(b.String(), "\n"))
}

// FormatWorkload renders technician utilization, busiest first.
func FormatWorkload(ws []metrics.TechnicianWorkload) string {
	headers := []string{"TECHNICIAN", "ASSIGNED", "CAPACITY", "UTILIZATION", "STATUS"}
	rows := make([][]string, 0, len(ws))
	for _, w := range ws {
		rows = append(rows, []string{
			w.Name,
			fmt.Sprint(w.Assigned),
			fmt.Sprint(w.Capacity),
			UtilizationBar(w.Utilization, 12),
			WorkloadBadge(w.Status),
		})
	}
	summary := metrics.WorkloadSummary(ws)
	return RenderTable(headers, rows) + Dim(fmt.Sprintf("%d overloaded, %d optimal, %d underutilized",
		summary[metrics.WorkloadOverloaded], summary[metrics.WorkloadOptimal], summary[metrics.WorkloadUnderutilized]))
}

func FormatPrediction(p *metrics.Prediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", RiskIndicator(p.Risk))
	fmt.Fprintf(&b, "%-22s %d\n", Dim("days of history"), p.HistoryDays)
	if p.HistoricalCompliance != nil {
		fmt.Fprintf(&b, "%-22s %s\n", Dim("historical compliance"), ComplianceBar(*p.HistoricalCompliance, 20))
	}
	fmt.Fprintf(&b, "%-22s %d\n\n", Dim("due within 24h"), p.AtRisk)
	b.WriteString(p.Recommendation)
	return RenderBox("SLA Risk", b.String())
}
