package scheduler

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/slaguard/internal/domain"
)

type ScoringWeights struct {
	Specialization float64
	Headroom       float64
	Location       float64
}

func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Specialization: 0.40,
		Headroom:       0.35,
		Location:       0.25,
	}
}

type ReasonCode string

const (
	ReasonSkillMatch      ReasonCode = "SKILL_MATCH"
	ReasonSkillMissing    ReasonCode = "SKILL_MISSING"
	ReasonHeadroom        ReasonCode = "HEADROOM"
	ReasonLocationMatch   ReasonCode = "LOCATION_MATCH"
	ReasonLocationNeutral ReasonCode = "LOCATION_NEUTRAL"
	ReasonLocationMiss    ReasonCode = "LOCATION_MISMATCH"
)

type ScoreReason struct {
	Code        ReasonCode
	Message     string
	WeightDelta float64
}

// Factors holds the normalized [0,1] value of each scoring factor before weighting.
type Factors struct {
	Specialization float64
	Headroom       float64
	Location       float64
}

type ScoredCandidate struct {
	Load    domain.TechnicianLoad
	Score   float64
	Factors Factors
	Reasons []ScoreReason
}

func (c ScoredCandidate) TechnicianID() string { return c.Load.Technician.ID }

// Score returns the weighted score of one technician for an item using the
// default weights. It does not apply the capacity constraint.
func Score(item *domain.WorkItem, load domain.TechnicianLoad) float64 {
	return ScoreCandidate(item, load, DefaultWeights()).Score
}

func ScoreCandidate(item *domain.WorkItem, load domain.TechnicianLoad, w ScoringWeights) ScoredCandidate {
	result := ScoredCandidate{Load: load}

	factors := []func(*domain.WorkItem, domain.TechnicianLoad, ScoringWeights, *Factors) ScoreReason{
		scoreSpecialization,
		scoreHeadroom,
		scoreLocation,
	}
	var score float64
	for _, f := range factors {
		reason := f(item, load, w, &result.Factors)
		score += reason.WeightDelta
		result.Reasons = append(result.Reasons, reason)
	}
	result.Score = score
	return result
}

func scoreSpecialization(item *domain.WorkItem, load domain.TechnicianLoad, w ScoringWeights, f *Factors) ScoreReason {
	if load.Technician.HasSkill(item.RequiredSkill) {
		f.Specialization = 1.0
		return ScoreReason{
			Code:        ReasonSkillMatch,
			Message:     fmt.Sprintf("Specialized in %s", item.RequiredSkill),
			WeightDelta: w.Specialization,
		}
	}
	f.Specialization = 0
	msg := "No required skill on item"
	if item.RequiredSkill != "" {
		msg = fmt.Sprintf("Not specialized in %s", item.RequiredSkill)
	}
	return ScoreReason{Code: ReasonSkillMissing, Message: msg}
}

// headroom is (max - current) / max clamped to [0,1].
func headroom(load domain.TechnicianLoad) float64 {
	max := load.Technician.MaxDailyTasks
	if max <= 0 {
		return 0
	}
	h := float64(max-load.AssignedCount) / float64(max)
	switch {
	case h < 0:
		return 0
	case h > 1:
		return 1
	}
	return h
}

func scoreHeadroom(_ *domain.WorkItem, load domain.TechnicianLoad, w ScoringWeights, f *Factors) ScoreReason {
	f.Headroom = headroom(load)
	return ScoreReason{
		Code:        ReasonHeadroom,
		Message:     fmt.Sprintf("%d of %d daily slots used", load.AssignedCount, load.Technician.MaxDailyTasks),
		WeightDelta: f.Headroom * w.Headroom,
	}
}

func scoreLocation(item *domain.WorkItem, load domain.TechnicianLoad, w ScoringWeights, f *Factors) ScoreReason {
	pref := strings.TrimSpace(load.Technician.LocationPreference)
	loc := strings.TrimSpace(item.Location)
	switch {
	case pref == "" || loc == "":
		f.Location = 0.5
		return ScoreReason{Code: ReasonLocationNeutral, Message: "No location preference", WeightDelta: 0.5 * w.Location}
	case strings.EqualFold(pref, loc):
		f.Location = 1.0
		return ScoreReason{Code: ReasonLocationMatch, Message: fmt.Sprintf("Prefers %s", pref), WeightDelta: w.Location}
	default:
		f.Location = 0
		return ScoreReason{Code: ReasonLocationMiss, Message: fmt.Sprintf("Prefers %s, item is in %s", pref, loc)}
	}
}
