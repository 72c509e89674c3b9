package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/scheduler"
	"github.com/alexanderramin/slaguard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_ClosedItemRejected(t *testing.T) {
	h := newHarness(t, &testutil.RecordingSink{})
	h.seedTech(t, "Ana")
	item := h.seedItem(t, testutil.WithCompletedAt(testNow))

	_, err := NewAssigner(h.uow, nil).Assign(context.Background(), item.ID, domain.CriteriaBestAvailable, "ops")
	assert.ErrorIs(t, err, ErrWorkItemClosed)
}

func TestAssign_MissingItem(t *testing.T) {
	h := newHarness(t, &testutil.RecordingSink{})
	_, err := NewAssigner(h.uow, nil).Assign(context.Background(), "nope", domain.CriteriaBestAvailable, "ops")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssign_CurrentAssigneeNotCountedAgainstItself(t *testing.T) {
	h := newHarness(t, &testutil.RecordingSink{})
	ctx := context.Background()
	tech := h.seedTech(t, "Solo", testutil.WithCapacity(1))
	item := h.seedItem(t, testutil.WithAssignee(tech.ID))

	decision, err := NewAssigner(h.uow, func() time.Time { return testNow }).
		Assign(ctx, item.ID, domain.CriteriaBestAvailable, "ops")
	require.NoError(t, err)
	assert.Equal(t, tech.ID, decision.TechnicianID)
	assert.Equal(t, "ops", decision.AssignedBy)
	assert.Equal(t, 0, decision.Factors.AssignedCount)
}

func TestAssign_FullPoolLeavesItemUntouched(t *testing.T) {
	h := newHarness(t, &testutil.RecordingSink{})
	ctx := context.Background()
	tech := h.seedTech(t, "Busy", testutil.WithCapacity(1))
	h.seedItem(t, testutil.WithAssignee(tech.ID))
	item := h.seedItem(t)

	_, err := NewAssigner(h.uow, nil).Assign(ctx, item.ID, domain.CriteriaBestAvailable, "ops")
	require.ErrorIs(t, err, scheduler.ErrNoEligibleCandidate)

	stored, err := h.items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssignedTechnicianID)
	decisions, err := h.decisions.ListByWorkItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

// Concurrent assignments against a file database must never push a
// technician past capacity.
func TestAssign_ConcurrentRespectsCapacity(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	ctx := context.Background()

	techs := repository.NewSQLiteTechnicianRepo(database)
	items := repository.NewSQLiteWorkItemRepo(database)
	tech := testutil.NewTestTechnician("Ana", testutil.WithCapacity(3))
	require.NoError(t, techs.Create(ctx, tech))

	const n = 10
	ids := make([]string, n)
	for i := range ids {
		w := testutil.NewTestWorkItem("job")
		require.NoError(t, items.Create(ctx, w))
		ids[i] = w.ID
	}

	assigner := NewAssigner(db.NewSQLiteUnitOfWork(database), nil)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, none int
		other    []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := assigner.Assign(ctx, id, domain.CriteriaBestAvailable, "bulk")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, scheduler.ErrNoEligibleCandidate):
				none++
			default:
				other = append(other, err)
			}
		}(id)
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 3, ok)
	assert.Equal(t, n-3, none)

	counts, err := items.AssignedCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts[tech.ID])
}
