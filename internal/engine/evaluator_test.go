package engine

import (
	"testing"
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/testutil"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestConditionHolds(t *testing.T) {
	created := testNow.Add(-90 * time.Minute)
	changed := testNow.Add(-20 * time.Minute)
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	item := testutil.NewTestWorkItem("pump",
		testutil.WithPriority(domain.PriorityHigh),
		testutil.WithStatus(domain.StatusInProgress),
		testutil.WithCreatedAt(created),
		testutil.WithStatusChangedAt(changed),
		testutil.WithDeadline(past),
	)
	noDeadline := testutil.NewTestWorkItem("filter", testutil.WithCreatedAt(created))
	futureDeadline := testutil.NewTestWorkItem("valve", testutil.WithCreatedAt(created), testutil.WithDeadline(future))
	closed := testutil.NewTestWorkItem("done", testutil.WithDeadline(past), testutil.WithCompletedAt(testNow))

	tests := []struct {
		name string
		cond domain.Condition
		item *domain.WorkItem
		want bool
	}{
		{"priority match", domain.PriorityEquals{Priority: domain.PriorityHigh}, item, true},
		{"priority mismatch", domain.PriorityEquals{Priority: domain.PriorityCritical}, item, false},
		{"status in", domain.StatusIn{Statuses: []domain.WorkItemStatus{domain.StatusPending, domain.StatusInProgress}}, item, true},
		{"status not in", domain.StatusIn{Statuses: []domain.WorkItemStatus{domain.StatusPending}}, item, false},
		{"elapsed since created at threshold", domain.ElapsedMinutes{Anchor: domain.AnchorCreated, Threshold: 90}, item, true},
		{"elapsed since created below threshold", domain.ElapsedMinutes{Anchor: domain.AnchorCreated, Threshold: 91}, item, false},
		{"elapsed since status change", domain.ElapsedMinutes{Anchor: domain.AnchorStatusChanged, Threshold: 30}, item, false},
		{"elapsed since status change met", domain.ElapsedMinutes{Anchor: domain.AnchorStatusChanged, Threshold: 20}, item, true},
		{"overdue", domain.IsOverdue{}, item, true},
		{"no deadline never overdue", domain.IsOverdue{}, noDeadline, false},
		{"future deadline", domain.IsOverdue{}, futureDeadline, false},
		{"terminal never overdue", domain.IsOverdue{}, closed, false},
		{"nil condition fails closed", nil, item, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConditionHolds(tt.cond, tt.item, testNow))
		})
	}
}

func TestEvaluate_AllConditionsMustHold(t *testing.T) {
	ev := NewEvaluator(DefaultRepeatOffenderThreshold)
	item := testutil.NewTestWorkItem("pump",
		testutil.WithPriority(domain.PriorityCritical),
		testutil.WithCreatedAt(testNow.Add(-5*time.Minute)),
	)
	rule := testutil.NewTestRule("critical-unassigned",
		testutil.WithSeverity(domain.SeverityHigh),
		testutil.WithConditions(
			domain.PriorityEquals{Priority: domain.PriorityCritical},
			domain.StatusIn{Statuses: []domain.WorkItemStatus{domain.StatusPending}},
		),
	)

	res := ev.Evaluate(item, rule, testNow)
	assert.True(t, res.Matched)
	assert.Equal(t, domain.SeverityHigh, res.Severity)
	assert.False(t, res.RepeatOffender)

	item.Status = domain.StatusScheduled
	assert.False(t, ev.Evaluate(item, rule, testNow).Matched)
}

func TestEvaluate_EmptyConditionsNeverMatch(t *testing.T) {
	ev := NewEvaluator(DefaultRepeatOffenderThreshold)
	item := testutil.NewTestWorkItem("pump")
	rule := testutil.NewTestRule("empty", testutil.WithConditions())

	assert.False(t, ev.Evaluate(item, rule, testNow).Matched)
	assert.False(t, ev.Evaluate(nil, rule, testNow).Matched)
	assert.False(t, ev.Evaluate(item, nil, testNow).Matched)
}

func TestEvaluate_RepeatOffenderBumpsSeverity(t *testing.T) {
	ev := NewEvaluator(2)
	rule := testutil.NewTestRule("overdue",
		testutil.WithSeverity(domain.SeverityMedium),
		testutil.WithConditions(domain.IsOverdue{}),
	)
	deadline := testNow.Add(-time.Minute)

	tests := []struct {
		count    int
		severity domain.Severity
		repeat   bool
	}{
		{0, domain.SeverityMedium, false},
		{2, domain.SeverityMedium, false},
		{3, domain.SeverityHigh, true},
		{10, domain.SeverityHigh, true},
	}
	for _, tt := range tests {
		item := testutil.NewTestWorkItem("pump", testutil.WithDeadline(deadline), testutil.WithViolationCount(tt.count))
		res := ev.Evaluate(item, rule, testNow)
		assert.True(t, res.Matched)
		assert.Equal(t, tt.severity, res.Severity, "count %d", tt.count)
		assert.Equal(t, tt.repeat, res.RepeatOffender, "count %d", tt.count)
	}

	critical := testutil.NewTestRule("crit", testutil.WithSeverity(domain.SeverityCritical))
	item := testutil.NewTestWorkItem("pump", testutil.WithDeadline(deadline), testutil.WithViolationCount(5))
	assert.Equal(t, domain.SeverityCritical, ev.Evaluate(item, critical, testNow).Severity)
}

func TestNewEvaluator_NegativeThresholdUsesDefault(t *testing.T) {
	ev := NewEvaluator(-1)
	assert.Equal(t, DefaultRepeatOffenderThreshold, ev.repeatThreshold)
}

func TestEvaluate_DisabledFlagIsCallerConcern(t *testing.T) {
	// Evaluate is pure and ignores Enabled; callers filter disabled rules.
	ev := NewEvaluator(DefaultRepeatOffenderThreshold)
	item := testutil.NewTestWorkItem("pump", testutil.WithDeadline(testNow.Add(-time.Minute)))
	rule := testutil.NewTestRule("off", testutil.Disabled())
	assert.True(t, ev.Evaluate(item, rule, testNow).Matched)
}
