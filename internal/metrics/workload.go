package metrics

import (
	"cmp"
	"slices"

	"github.com/alexanderramin/slaguard/internal/domain"
)

type WorkloadStatus string

const (
	WorkloadOverloaded    WorkloadStatus = "overloaded"
	WorkloadOptimal       WorkloadStatus = "optimal"
	WorkloadUnderutilized WorkloadStatus = "underutilized"
)

const (
	overloadedAbove    = 90.0
	underutilizedBelow = 50.0
)

type TechnicianWorkload struct {
	TechnicianID string
	Name         string
	Assigned     int
	Capacity     int
	// Utilization is assigned over capacity, in percent.
	Utilization float64
	Status      WorkloadStatus
}

// AnalyzeWorkload classifies each technician by utilization, busiest first.
// A technician with zero capacity is overloaded as soon as anything is
// assigned.
func AnalyzeWorkload(loads []domain.TechnicianLoad) []TechnicianWorkload {
	out := make([]TechnicianWorkload, 0, len(loads))
	for _, l := range loads {
		w := TechnicianWorkload{
			TechnicianID: l.Technician.ID,
			Name:         l.Technician.Name,
			Assigned:     l.AssignedCount,
			Capacity:     l.Technician.MaxDailyTasks,
		}
		switch {
		case w.Capacity > 0:
			w.Utilization = float64(w.Assigned) / float64(w.Capacity) * 100
		case w.Assigned > 0:
			w.Utilization = 100 * float64(w.Assigned)
		}
		w.Status = classify(w.Utilization)
		out = append(out, w)
	}
	slices.SortStableFunc(out, func(a, b TechnicianWorkload) int {
		if c := cmp.Compare(b.Utilization, a.Utilization); c != 0 {
			return c
		}
		return cmp.Compare(a.TechnicianID, b.TechnicianID)
	})
	return out
}

func classify(utilization float64) WorkloadStatus {
	switch {
	case utilization > overloadedAbove:
		return WorkloadOverloaded
	case utilization < underutilizedBelow:
		return WorkloadUnderutilized
	default:
		return WorkloadOptimal
	}
}

// WorkloadSummary counts technicians per status.
func WorkloadSummary(ws []TechnicianWorkload) map[WorkloadStatus]int {
	out := map[WorkloadStatus]int{
		WorkloadOverloaded:    0,
		WorkloadOptimal:       0,
		WorkloadUnderutilized: 0,
	}
	for _, w := range ws {
		out[w.Status]++
	}
	return out
}
