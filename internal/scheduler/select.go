package scheduler

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// ErrNoEligibleCandidate means every technician was filtered out. It is a
// business outcome, not a system fault.
var ErrNoEligibleCandidate = errors.New("no eligible candidate")

// Selection is the ranked result of one scoring pass.
type Selection struct {
	Best         ScoredCandidate
	Alternatives []ScoredCandidate
	Criteria     domain.ReassignCriteria
	PoolSize     int
	Excluded     int
}

// Eligible applies the hard constraints: active, below capacity, and for the
// specialist criteria, holding the item's required skill.
func Eligible(item *domain.WorkItem, load domain.TechnicianLoad, criteria domain.ReassignCriteria) bool {
	if load.Technician == nil || !load.Technician.Active || load.AtCapacity() {
		return false
	}
	if criteria == domain.CriteriaAvailableSpecialist && !load.Technician.HasSkill(item.RequiredSkill) {
		return false
	}
	return true
}

// Rank scores every eligible technician and returns them in canonical order.
func Rank(item *domain.WorkItem, pool []domain.TechnicianLoad, criteria domain.ReassignCriteria, w ScoringWeights) (ranked []ScoredCandidate, excluded int) {
	for _, load := range pool {
		if !Eligible(item, load, criteria) {
			excluded++
			continue
		}
		ranked = append(ranked, ScoreCandidate(item, load, w))
	}
	CanonicalSort(ranked)
	return ranked, excluded
}

// SelectBest picks the top-ranked technician. An empty pool after filtering
// returns ErrNoEligibleCandidate.
func SelectBest(item *domain.WorkItem, pool []domain.TechnicianLoad, criteria domain.ReassignCriteria) (*Selection, error) {
	if criteria == "" {
		criteria = domain.CriteriaBestAvailable
	}
	ranked, excluded := Rank(item, pool, criteria, DefaultWeights())
	if len(ranked) == 0 {
		return nil, ErrNoEligibleCandidate
	}
	return &Selection{
		Best:         ranked[0],
		Alternatives: ranked[1:],
		Criteria:     criteria,
		PoolSize:     len(pool),
		Excluded:     excluded,
	}, nil
}

// Decision converts the selection into its audit record.
func (s *Selection) Decision(item *domain.WorkItem, assignedBy string, now time.Time) *domain.AssignmentDecision {
	alts := make([]domain.CandidateScore, len(s.Alternatives))
	for i, c := range s.Alternatives {
		alts[i] = domain.CandidateScore{
			TechnicianID:  c.TechnicianID(),
			Score:         c.Score,
			AssignedCount: c.Load.AssignedCount,
		}
	}
	best := s.Best
	return &domain.AssignmentDecision{
		ID:               uuid.New().String(),
		WorkItemID:       item.ID,
		TechnicianID:     best.TechnicianID(),
		Score:            best.Score,
		AlgorithmVersion: domain.AlgorithmVersion,
		Factors: domain.DecisionFactors{
			RequiredSkill:  item.RequiredSkill,
			Location:       item.Location,
			Specialization: best.Factors.Specialization,
			Headroom:       best.Factors.Headroom,
			LocationMatch:  best.Factors.Location,
			AssignedCount:  best.Load.AssignedCount,
			MaxDailyTasks:  best.Load.Technician.MaxDailyTasks,
			Criteria:       string(s.Criteria),
			PoolSize:       s.PoolSize,
			Excluded:       s.Excluded,
		},
		Alternatives: alts,
		AssignedBy:   assignedBy,
		CreatedAt:    now,
	}
}
