package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		status   WorkItemStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusScheduled, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}
	for _, tc := range cases {
		w := &WorkItem{Status: tc.status}
		assert.Equal(t, tc.terminal, w.IsTerminal(), "status=%s", tc.status)
	}
}

func TestPriorityRank_Ordering(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityCritical.Rank())
	assert.Equal(t, 0, Priority("urgent").Rank())
	assert.False(t, Priority("urgent").Valid())
}

func TestSeverityBump(t *testing.T) {
	assert.Equal(t, SeverityMedium, SeverityLow.Bump())
	assert.Equal(t, SeverityHigh, SeverityMedium.Bump())
	assert.Equal(t, SeverityCritical, SeverityHigh.Bump())
	assert.Equal(t, SeverityCritical, SeverityCritical.Bump())
	assert.Equal(t, Severity("bogus"), Severity("bogus").Bump())
}

func TestIsOverdue(t *testing.T) {
	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)

	assert.True(t, (&WorkItem{Status: StatusPending, DueDeadline: &past}).IsOverdue(testNow))
	assert.False(t, (&WorkItem{Status: StatusPending, DueDeadline: &future}).IsOverdue(testNow))
	assert.False(t, (&WorkItem{Status: StatusPending}).IsOverdue(testNow), "no deadline is never overdue")
	assert.False(t, (&WorkItem{Status: StatusCompleted, DueDeadline: &past}).IsOverdue(testNow))
}

func TestAnchorTime_StatusChangedUsesLaterInstant(t *testing.T) {
	created := testNow.Add(-2 * time.Hour)
	changed := testNow.Add(-30 * time.Minute)
	w := &WorkItem{CreatedAt: created, StatusChangedAt: &changed}

	assert.Equal(t, created, w.AnchorTime(AnchorCreated))
	assert.Equal(t, changed, w.AnchorTime(AnchorStatusChanged))
	assert.Equal(t, 30, w.ElapsedMinutes(AnchorStatusChanged, testNow))
	assert.Equal(t, 120, w.ElapsedMinutes(AnchorCreated, testNow))
}

func TestAnchorTime_StatusChangedFallsBackToCreated(t *testing.T) {
	created := testNow.Add(-time.Hour)
	w := &WorkItem{CreatedAt: created}
	assert.Equal(t, created, w.AnchorTime(AnchorStatusChanged))

	stale := created.Add(-time.Hour)
	w.StatusChangedAt = &stale
	assert.Equal(t, created, w.AnchorTime(AnchorStatusChanged))
}

func TestElapsedMinutes_NeverNegative(t *testing.T) {
	w := &WorkItem{CreatedAt: testNow.Add(time.Hour)}
	assert.Equal(t, 0, w.ElapsedMinutes(AnchorCreated, testNow))
}

func TestTransitionTo_Completed(t *testing.T) {
	w := &WorkItem{ID: "w1", Status: StatusInProgress}
	require.NoError(t, w.TransitionTo(StatusCompleted, testNow))
	assert.Equal(t, StatusCompleted, w.Status)
	require.NotNil(t, w.CompletedAt)
	assert.Equal(t, testNow, *w.CompletedAt)
	require.NotNil(t, w.StatusChangedAt)
	assert.Equal(t, testNow, w.UpdatedAt)
}

func TestTransitionTo_FromTerminal(t *testing.T) {
	w := &WorkItem{ID: "w1", Status: StatusCancelled}
	err := w.TransitionTo(StatusPending, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
	assert.Equal(t, StatusCancelled, w.Status)
}

func TestTransitionTo_Invalid(t *testing.T) {
	w := &WorkItem{ID: "w1", Status: StatusPending}
	require.Error(t, w.TransitionTo("done", testNow))
}

func TestTransitionTo_SameStatusKeepsAnchor(t *testing.T) {
	w := &WorkItem{ID: "w1", Status: StatusPending}
	require.NoError(t, w.TransitionTo(StatusPending, testNow))
	assert.Nil(t, w.StatusChangedAt)
}

func TestRaisePriority_NeverLowers(t *testing.T) {
	w := &WorkItem{Priority: PriorityHigh}
	assert.False(t, w.RaisePriority(PriorityMedium, testNow))
	assert.False(t, w.RaisePriority(PriorityHigh, testNow))
	assert.Equal(t, PriorityHigh, w.Priority)
	assert.Nil(t, w.PriorityBoostedAt)

	assert.True(t, w.RaisePriority(PriorityCritical, testNow))
	assert.Equal(t, PriorityCritical, w.Priority)
	require.NotNil(t, w.PriorityBoostedAt)
}

func TestEscalate_SameDayDetection(t *testing.T) {
	w := &WorkItem{}
	assert.False(t, w.Escalate("supervisor", testNow))
	require.NotNil(t, w.EscalatedTo)
	assert.Equal(t, "supervisor", *w.EscalatedTo)

	later := testNow.Add(3 * time.Hour)
	assert.True(t, w.Escalate("supervisor", later))
	assert.Equal(t, later, *w.EscalatedAt, "timestamp refreshed on repeat")

	nextDay := testNow.Add(24 * time.Hour)
	assert.False(t, w.Escalate("manager", nextDay))
}

func TestCompletedOnTime(t *testing.T) {
	due := testNow
	early := testNow.Add(-time.Minute)
	late := testNow.Add(time.Minute)

	assert.True(t, (&WorkItem{Status: StatusCompleted, CompletedAt: &early, DueDeadline: &due}).CompletedOnTime())
	assert.True(t, (&WorkItem{Status: StatusCompleted, CompletedAt: &due, DueDeadline: &due}).CompletedOnTime(), "boundary is on time")
	assert.False(t, (&WorkItem{Status: StatusCompleted, CompletedAt: &late, DueDeadline: &due}).CompletedOnTime())
	assert.True(t, (&WorkItem{Status: StatusCompleted, CompletedAt: &late}).CompletedOnTime(), "no deadline")
	assert.False(t, (&WorkItem{Status: StatusCancelled, CompletedAt: &early, DueDeadline: &due}).CompletedOnTime())
}

func TestDedupKey_UsesUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, 6, 14, 22, 0, 0, 0, loc) // 2025-06-15 03:00 UTC
	assert.Equal(t, "w1|r1|2025-06-15", DedupKey("w1", "r1", late))
}

func TestTechnicianLoad_AtCapacity(t *testing.T) {
	tech := &Technician{ID: "t1", MaxDailyTasks: 3}
	assert.False(t, TechnicianLoad{Technician: tech, AssignedCount: 2}.AtCapacity())
	assert.True(t, TechnicianLoad{Technician: tech, AssignedCount: 3}.AtCapacity())
	assert.True(t, TechnicianLoad{Technician: tech, AssignedCount: 4}.AtCapacity())
}
