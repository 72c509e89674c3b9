package scheduler

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/slaguard/internal/domain"
)

func buildPool(caps, loads []int, skilled []bool) []domain.TechnicianLoad {
	n := min(len(caps), len(loads), len(skilled))
	pool := make([]domain.TechnicianLoad, n)
	for i := 0; i < n; i++ {
		var skills []string
		if skilled[i] {
			skills = []string{"cardio"}
		}
		pool[i] = domain.TechnicianLoad{
			Technician:    tech(fmt.Sprintf("t%02d", i), caps[i], skills...),
			AssignedCount: loads[i],
		}
	}
	return pool
}

// TestSelectBest_NeverPicksTechnicianAtCapacity checks the hard capacity
// constraint over generated pools.
func TestSelectBest_NeverPicksTechnicianAtCapacity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("selected technician is below capacity", prop.ForAll(
		func(caps, loads []int, skilled []bool) bool {
			pool := buildPool(caps, loads, skilled)
			item := &domain.WorkItem{ID: "wi", RequiredSkill: "cardio"}

			sel, err := SelectBest(item, pool, domain.CriteriaBestAvailable)
			if err != nil {
				for _, l := range pool {
					if !l.AtCapacity() {
						return false
					}
				}
				return true
			}
			if sel.Best.Load.AtCapacity() {
				return false
			}
			for _, alt := range sel.Alternatives {
				if alt.Load.AtCapacity() || alt.Score > sel.Best.Score {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(0, 10)),
		gen.SliceOfN(8, gen.IntRange(0, 12)),
		gen.SliceOfN(8, gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestSelectBest_Invariants_SeededPools(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 300; trial++ {
		n := rng.Intn(10)
		caps := make([]int, n)
		loads := make([]int, n)
		skilled := make([]bool, n)
		for i := 0; i < n; i++ {
			caps[i] = rng.Intn(8)
			loads[i] = rng.Intn(10)
			skilled[i] = rng.Intn(2) == 1
		}
		pool := buildPool(caps, loads, skilled)
		criteria := domain.CriteriaBestAvailable
		if rng.Intn(2) == 1 {
			criteria = domain.CriteriaAvailableSpecialist
		}
		item := &domain.WorkItem{ID: "wi", RequiredSkill: "cardio"}

		sel, err := SelectBest(item, pool, criteria)
		if err != nil {
			require.ErrorIs(t, err, ErrNoEligibleCandidate, "trial %d", trial)
			continue
		}

		// Invariant 1: the winner is under capacity
		assert.Less(t, sel.Best.Load.AssignedCount, sel.Best.Load.Technician.MaxDailyTasks, "trial %d", trial)

		// Invariant 2: specialist criteria only yields specialists
		if criteria == domain.CriteriaAvailableSpecialist {
			assert.True(t, sel.Best.Load.Technician.HasSkill("cardio"), "trial %d", trial)
		}

		// Invariant 3: every eligible technician is accounted for exactly once
		assert.Equal(t, len(pool), 1+len(sel.Alternatives)+sel.Excluded, "trial %d", trial)

		// Invariant 4: score is within [0,1]
		assert.GreaterOrEqual(t, sel.Best.Score, 0.0)
		assert.LessOrEqual(t, sel.Best.Score, 1.0+1e-9)
	}
}
