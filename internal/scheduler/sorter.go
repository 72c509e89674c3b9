package scheduler

import "sort"

// CanonicalSort orders candidates deterministically:
// 1. Score: higher first
// 2. Assigned count: lower first
// 3. Technician ID: lexical ascending
func CanonicalSort(candidates []ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Load.AssignedCount != b.Load.AssignedCount {
			return a.Load.AssignedCount < b.Load.AssignedCount
		}
		return a.TechnicianID() < b.TechnicianID()
	})
}
