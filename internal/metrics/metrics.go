// Package metrics aggregates SLA compliance figures from work item snapshots.
// Every function is pure; callers load the data.
package metrics

import (
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
)

// Report covers the half-open window [PeriodStart, PeriodEnd). Rates are
// fractions in [0, 1] and nil when their denominator is zero.
type Report struct {
	PeriodStart time.Time
	PeriodEnd   time.Time

	ItemsCreated    int
	Completed       int
	CompletedOnTime int
	Escalated       int
	ViolationCount  int

	ComplianceRate         *float64
	AvgResponseTimeMinutes *float64
	EscalationRate         *float64
}

func inWindow(t *time.Time, start, end time.Time) bool {
	return t != nil && !t.Before(start) && t.Before(end)
}

// Compute derives the period report. items must contain every item created,
// completed or escalated inside the window; others are ignored.
// violations is the number of violations created inside the window.
func Compute(items []*domain.WorkItem, violations int, start, end time.Time) Report {
	r := Report{PeriodStart: start, PeriodEnd: end, ViolationCount: violations}

	var responseTotal float64
	for _, w := range items {
		created := w.CreatedAt
		if inWindow(&created, start, end) {
			r.ItemsCreated++
		}
		if w.Status == domain.StatusCompleted && inWindow(w.CompletedAt, start, end) {
			r.Completed++
			if w.CompletedOnTime() {
				r.CompletedOnTime++
			}
			if mins, ok := w.ResponseMinutes(); ok {
				responseTotal += mins
			}
		}
		if inWindow(w.EscalatedAt, start, end) {
			r.Escalated++
		}
	}

	if r.Completed > 0 {
		r.ComplianceRate = ratio(r.CompletedOnTime, r.Completed)
		avg := responseTotal / float64(r.Completed)
		r.AvgResponseTimeMinutes = &avg
	}
	if r.ItemsCreated > 0 {
		r.EscalationRate = ratio(r.Escalated, r.ItemsCreated)
	}
	return r
}

func ratio(num, den int) *float64 {
	v := float64(num) / float64(den)
	return &v
}
