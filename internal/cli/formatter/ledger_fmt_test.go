package formatter

import (
	"strings"
	"testing"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatViolationStats_PivotsBySeverity(t *testing.T) {
	stats := []domain.DailyViolationStat{
		{Day: "2025-06-14", Severity: domain.SeverityHigh, Count: 2},
		{Day: "2025-06-15", Severity: domain.SeverityCritical, Count: 1},
		{Day: "2025-06-15", Severity: domain.SeverityLow, Count: 3},
	}

	lines := splitLines(stripANSI(FormatViolationStats(stats)))
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[2], "2025-06-15"), "newest day first")
	assert.Equal(t, []string{"2025-06-15", "1", "0", "0", "3", "4"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"2025-06-14", "0", "2", "0", "0", "2"}, strings.Fields(lines[3]))
	assert.Equal(t, "6 violation(s) over 2 day(s)", lines[4])
}

func TestFormatActionList_FailedEntry(t *testing.T) {
	rule := "overdue_tasks"
	out := stripANSI(FormatActionList([]*domain.ActionLogEntry{
		{WorkItemID: "item-1", RuleID: &rule, ActionType: domain.ActionNotify, ExecutedBy: domain.ExecutedBySystem, ExecutedAt: now, Message: "sink down"},
		{WorkItemID: "item-2", ActionType: domain.ActionNotify, Success: true, ExecutedBy: domain.ExecutedBySystem, ExecutedAt: now},
	}))
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "overdue_tasks")
	assert.Contains(t, out, "--")
}
