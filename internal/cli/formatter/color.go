package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/metrics"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// SeverityStyle colors a rule or violation severity.
func SeverityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return StyleRed.Bold(true)
	case domain.SeverityHigh:
		return StyleRed
	case domain.SeverityMedium:
		return StyleYellow
	case domain.SeverityLow:
		return StyleBlue
	default:
		return StyleDim
	}
}

// SeverityBadge renders a severity as "▲ HIGH".
func SeverityBadge(s domain.Severity) string {
	if s == "" {
		return StyleDim.Render("--")
	}
	return SeverityStyle(s).Render("▲ " + strings.ToUpper(string(s)))
}

// PriorityPill renders a work item priority.
func PriorityPill(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return StyleRed.Bold(true).Render("!! critical")
	case domain.PriorityHigh:
		return StyleRed.Render("!  high")
	case domain.PriorityMedium:
		return StyleYellow.Render("·  medium")
	case domain.PriorityLow:
		return StyleDim.Render("·  low")
	default:
		return StyleDim.Render(string(p))
	}
}

// StatusPill renders a work item status.
func StatusPill(s domain.WorkItemStatus) string {
	switch s {
	case domain.StatusPending:
		return StyleBlue.Render("○ Pending")
	case domain.StatusScheduled:
		return StylePurple.Render("◔ Scheduled")
	case domain.StatusInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.StatusCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.StatusCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(s))
	}
}

// OutcomePill renders a sweep or assignment outcome.
func OutcomePill(o contract.Outcome) string {
	switch o {
	case contract.OutcomeActionTaken:
		return StyleGreen.Render("✔ action taken")
	case contract.OutcomeNoAction:
		return StyleDim.Render("○ no action")
	case contract.OutcomeFailed:
		return StyleRed.Render("✖ failed")
	default:
		return StyleDim.Render(string(o))
	}
}

// RiskIndicator returns a colored risk indicator such as "● HIGH RISK".
func RiskIndicator(r metrics.RiskLevel) string {
	switch r {
	case metrics.RiskHigh:
		return StyleRed.Render("● HIGH RISK")
	case metrics.RiskMedium:
		return StyleYellow.Render("● MEDIUM RISK")
	case metrics.RiskLow:
		return StyleGreen.Render("● LOW RISK")
	default:
		return StyleDim.Render("● INSUFFICIENT DATA")
	}
}

func WorkloadBadge(s metrics.WorkloadStatus) string {
	switch s {
	case metrics.WorkloadOverloaded:
		return StyleRed.Render("overloaded")
	case metrics.WorkloadOptimal:
		return StyleGreen.Render("optimal")
	case metrics.WorkloadUnderutilized:
		return StyleBlue.Render("underutilized")
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
