package metrics

import (
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
)

type RiskLevel string

const (
	RiskLow              RiskLevel = "low"
	RiskMedium           RiskLevel = "medium"
	RiskHigh             RiskLevel = "high"
	RiskInsufficientData RiskLevel = "insufficient_data"
)

const (
	// HistoryWindow is how far back Predict looks for completions.
	HistoryWindow = 30 * 24 * time.Hour
	// MinHistoryDays is the number of distinct completion days needed.
	MinHistoryDays = 7
	// AtRiskHorizon bounds "due soon".
	AtRiskHorizon = 24 * time.Hour
)

type Prediction struct {
	Risk                 RiskLevel
	HistoricalCompliance *float64
	AtRisk               int
	HistoryDays          int
	Recommendation       string
}

// Predict estimates SLA risk from completions in the last HistoryWindow and
// the open items due within AtRiskHorizon (overdue ones included).
func Predict(items []*domain.WorkItem, now time.Time) Prediction {
	since := now.Add(-HistoryWindow)
	days := make(map[string]bool)
	var completed, onTime int
	var p Prediction

	for _, w := range items {
		switch {
		case w.Status == domain.StatusCompleted && inWindow(w.CompletedAt, since, now):
			days[domain.DayKey(*w.CompletedAt)] = true
			completed++
			if w.CompletedOnTime() {
				onTime++
			}
		case !w.IsTerminal() && w.DueDeadline != nil && !w.DueDeadline.After(now.Add(AtRiskHorizon)):
			p.AtRisk++
		}
	}
	p.HistoryDays = len(days)

	if p.HistoryDays < MinHistoryDays {
		p.Risk = RiskInsufficientData
		p.Recommendation = "Not enough history: at least 7 days of completions are required."
		return p
	}

	p.HistoricalCompliance = ratio(onTime, completed)
	pct := *p.HistoricalCompliance * 100
	switch {
	case pct < 70 || p.AtRisk > 5:
		p.Risk = RiskHigh
		p.Recommendation = "Review technician allocation and prioritize critical work; consider reassignment."
	case pct < 85 || p.AtRisk > 2:
		p.Risk = RiskMedium
		p.Recommendation = "Some work is close to its deadline; check technician workload."
	default:
		p.Risk = RiskLow
		p.Recommendation = "Operating within normal parameters."
	}
	return p
}
