package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func slaguardHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// ruleDraft is the form-backed state of "rule new".
type ruleDraft struct {
	ID          string
	Name        string
	Description string
	Severity    string
	Priority    string
	When        string
	Then        string
}

// ruleForm collects a rule interactively. Conditions and actions are typed
// one expression per line in the same syntax as the --when/--then flags.
func ruleForm(d *ruleDraft) *huh.Form {
	severities := make([]huh.Option[string], 0, 4)
	for _, s := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical} {
		severities = append(severities, huh.NewOption(string(s), string(s)))
	}
	d.Severity = domain.CoalesceStr(d.Severity, string(domain.SeverityMedium))
	d.Priority = domain.CoalesceStr(d.Priority, "50")

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Rule ID").Placeholder("late_pickups").Value(&d.ID).Validate(notBlank("rule ID")),
			huh.NewInput().Title("Name").Value(&d.Name).Validate(notBlank("name")),
			huh.NewInput().Title("Description").Value(&d.Description),
			huh.NewSelect[string]().Title("Severity").Options(severities...).Value(&d.Severity),
			huh.NewInput().Title("Priority").Description("Higher runs first").Value(&d.Priority).Validate(validateInt),
		),
		huh.NewGroup(
			huh.NewText().Title("When (one per line)").
				Description("priority=high, status=pending,scheduled, elapsed>=60, status_elapsed>=30, overdue").
				Value(&d.When).Validate(notBlank("conditions")),
			huh.NewText().Title("Then (one per line)").
				Description("escalate=manager, notify=admin,supervisor, reassign=best_available, boost=high, log=text").
				Value(&d.Then).Validate(notBlank("actions")),
		),
	).WithTheme(slaguardHuhTheme()).WithShowHelp(false)
}

func notBlank(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}
