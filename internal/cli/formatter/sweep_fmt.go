package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/slaguard/internal/contract"
)

// FormatSweepResult renders a manual sweep outcome with its counters.
func FormatSweepResult(r *contract.SweepResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", OutcomePill(r.Outcome), r.Reason)
	if r.FailedPhase != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("failed during"), StyleRed.Render(r.FailedPhase))
	}
	b.WriteString("\n")
	stat := func(label string, n int) {
		fmt.Fprintf(&b, "%-20s %d\n", Dim(label), n)
	}
	stat("items scanned", r.ItemsScanned)
	stat("rules evaluated", r.RulesEvaluated)
	stat("violations detected", r.ViolationsDetected)
	stat("reopened", r.Reopened)
	stat("resolved", r.Resolved)
	stat("actions dispatched", r.ActionsDispatched)
	if r.ActionsFailed > 0 {
		fmt.Fprintf(&b, "%-20s %s\n", Dim("actions failed"), StyleRed.Render(fmt.Sprint(r.ActionsFailed)))
	}
	fmt.Fprintf(&b, "%-20s %dms", Dim("duration"), r.DurationMs)
	return RenderBox("Sweep", b.String())
}
