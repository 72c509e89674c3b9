package domain

import "time"

// AlgorithmVersion tags decisions produced by the weighted scorer.
const AlgorithmVersion = "weighted-v1"

type CandidateScore struct {
	TechnicianID  string  `json:"technician_id"`
	Score         float64 `json:"score"`
	AssignedCount int     `json:"assigned_count"`
}

// DecisionFactors is the per-factor breakdown of the selected candidate.
type DecisionFactors struct {
	RequiredSkill  string  `json:"required_skill,omitempty"`
	Location       string  `json:"location,omitempty"`
	Specialization float64 `json:"specialization"`
	Headroom       float64 `json:"headroom"`
	LocationMatch  float64 `json:"location_match"`
	AssignedCount  int     `json:"assigned_count"`
	MaxDailyTasks  int     `json:"max_daily_tasks"`
	Criteria       string  `json:"criteria"`
	PoolSize       int     `json:"pool_size"`
	Excluded       int     `json:"excluded"`
}

// AssignmentDecision is the audit record of one assignment. Never mutated.
type AssignmentDecision struct {
	ID               string
	WorkItemID       string
	TechnicianID     string
	Score            float64
	AlgorithmVersion string
	Factors          DecisionFactors
	Alternatives     []CandidateScore
	AssignedBy       string
	CreatedAt        time.Time
}
