package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func violationTestSetup(t *testing.T) (*SQLiteViolationRepo, *domain.WorkItem) {
	t.Helper()
	db := testutil.NewTestDB(t)
	w := testutil.NewTestWorkItem("Leak", testutil.WithPriority(domain.PriorityHigh))
	require.NoError(t, NewSQLiteWorkItemRepo(db).Create(context.Background(), w))
	return NewSQLiteViolationRepo(db), w
}

func TestViolationRepo_RecordDedupsPerDay(t *testing.T) {
	repo, w := violationTestSetup(t)
	ctx := context.Background()
	rule := testutil.NewTestRule("overdue_tasks", testutil.WithSeverity(domain.SeverityHigh))
	morning := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	first, outcome, err := repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, morning))
	require.NoError(t, err)
	assert.Equal(t, RecordCreated, outcome)

	again, outcome, err := repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, morning.Add(6*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, RecordExisting, outcome)
	assert.Equal(t, first.ID, again.ID)

	_, outcome, err = repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, morning.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, RecordCreated, outcome)

	all, err := repo.List(ctx, ViolationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestViolationRepo_MarkDispatchedKeepsFirstStamp(t *testing.T) {
	repo, w := violationTestSetup(t)
	ctx := context.Background()
	rule := testutil.NewTestRule("r1")
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	v, _, err := repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, now))
	require.NoError(t, err)
	assert.True(t, v.Pending())

	require.NoError(t, repo.MarkDispatched(ctx, v.ID, now.Add(time.Minute)))
	require.NoError(t, repo.MarkDispatched(ctx, v.ID, now.Add(time.Hour)))

	got, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DispatchedAt)
	assert.True(t, got.DispatchedAt.Equal(now.Add(time.Minute)))
	assert.False(t, got.Pending())

	existing, outcome, err := repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, now.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, RecordExisting, outcome)
	assert.NotNil(t, existing.DispatchedAt, "the stored record carries its dispatch stamp")
}

func TestViolationRepo_ResolveThenRecordReopens(t *testing.T) {
	repo, w := violationTestSetup(t)
	ctx := context.Background()
	rule := testutil.NewTestRule("r1")
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	v, _, err := repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, now))
	require.NoError(t, err)
	require.NoError(t, repo.Resolve(ctx, v.ID, now.Add(time.Hour)))

	got, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, got.Resolved)
	require.NotNil(t, got.ResolvedAt)
	assert.ErrorIs(t, repo.Resolve(ctx, v.ID, now), ErrNotFound, "already resolved")

	reopened, outcome, err := repo.Record(ctx, domain.NewViolation(w, rule, rule.Severity, now.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, RecordReopened, outcome)
	assert.Equal(t, v.ID, reopened.ID)
	assert.False(t, reopened.Resolved)

	unresolved, err := repo.ListUnresolved(ctx)
	require.NoError(t, err)
	require.Len(t, unresolved, 1)
	assert.Nil(t, unresolved[0].ResolvedAt)
}

func TestViolationRepo_DataRoundTrip(t *testing.T) {
	repo, w := violationTestSetup(t)
	ctx := context.Background()
	rule := testutil.NewTestRule("r1", testutil.WithSeverity(domain.SeverityLow))
	w.ViolationCount = 3
	now := w.CreatedAt.Add(90 * time.Minute)

	v, _, err := repo.Record(ctx, domain.NewViolation(w, rule, domain.SeverityMedium, now))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityMedium, got.Severity)
	assert.Equal(t, "r1", got.Data.RuleName)
	assert.Equal(t, domain.PriorityHigh, got.Data.Priority)
	assert.Equal(t, 90, got.Data.ElapsedMinutes)
	assert.Equal(t, 3, got.Data.ViolationCount)
	assert.True(t, got.Data.RepeatOffender)
}

func TestViolationRepo_GetByID_NotFound(t *testing.T) {
	repo, _ := violationTestSetup(t)
	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViolationRepo_ListFiltersAndCounts(t *testing.T) {
	repo, w := violationTestSetup(t)
	ctx := context.Background()
	day1 := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	a := testutil.NewTestRule("a", testutil.WithSeverity(domain.SeverityHigh))
	b := testutil.NewTestRule("b", testutil.WithSeverity(domain.SeverityLow))
	va, _, err := repo.Record(ctx, domain.NewViolation(w, a, a.Severity, day1))
	require.NoError(t, err)
	_, _, err = repo.Record(ctx, domain.NewViolation(w, b, b.Severity, day1.Add(time.Hour)))
	require.NoError(t, err)
	_, _, err = repo.Record(ctx, domain.NewViolation(w, a, a.Severity, day2))
	require.NoError(t, err)
	require.NoError(t, repo.Resolve(ctx, va.ID, day2))

	byRule, err := repo.List(ctx, ViolationFilter{RuleID: "a"})
	require.NoError(t, err)
	assert.Len(t, byRule, 2)

	resolved := true
	done, err := repo.List(ctx, ViolationFilter{Resolved: &resolved})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, va.ID, done[0].ID)

	from, to := day2.Truncate(24*time.Hour), day2.Truncate(24*time.Hour).Add(24*time.Hour)
	window, err := repo.List(ctx, ViolationFilter{WorkItemID: w.ID, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "a", window[0].RuleID)

	limited, err := repo.List(ctx, ViolationFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	n, err := repo.CountBetween(ctx, day1, day2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestViolationRepo_DailyStats(t *testing.T) {
	repo, w := violationTestSetup(t)
	ctx := context.Background()
	day1 := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	for _, id := range []string{"a", "b"} {
		r := testutil.NewTestRule(id, testutil.WithSeverity(domain.SeverityHigh))
		_, _, err := repo.Record(ctx, domain.NewViolation(w, r, r.Severity, day1))
		require.NoError(t, err)
	}
	c := testutil.NewTestRule("c", testutil.WithSeverity(domain.SeverityCritical))
	_, _, err := repo.Record(ctx, domain.NewViolation(w, c, c.Severity, day2))
	require.NoError(t, err)

	stats, err := repo.DailyStats(ctx, day1.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []domain.DailyViolationStat{
		{Day: "2025-06-15", Severity: domain.SeverityCritical, Count: 1},
		{Day: "2025-06-14", Severity: domain.SeverityHigh, Count: 2},
	}, stats)

	recent, err := repo.DailyStats(ctx, day2.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
