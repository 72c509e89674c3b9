package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/sweep"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type watchKeyMap struct {
	Sweep   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Sweep:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sweep now")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type (
	violationsLoadedMsg struct {
		violations []*domain.Violation
		err        error
	}
	sweepDoneMsg    struct{ result *contract.SweepResult }
	watchRefreshMsg time.Time
)

// watchModel is a live view of open violations. It polls the ledger every
// interval and can trigger a sweep on demand.
type watchModel struct {
	app      *App
	ctx      context.Context
	interval time.Duration
	keys     watchKeyMap

	spinner  spinner.Model
	table    table.Model
	phase    sweep.Phase
	sweeping bool
	last     *contract.SweepResult
	open     int
	err      error
	width    int
}

func newWatchModel(ctx context.Context, app *App, interval time.Duration) watchModel {
	cols := []table.Column{
		{Title: "ITEM", Width: 10},
		{Title: "RULE", Width: 22},
		{Title: "SEVERITY", Width: 10},
		{Title: "ELAPSED", Width: 9},
		{Title: "DETECTED", Width: 17},
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(formatter.ColorHeader).Bold(true).
		BorderStyle(lipgloss.NormalBorder()).BorderForeground(formatter.ColorDim).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(formatter.ColorFg).Background(lipgloss.Color("#504945"))

	return watchModel{
		app:      app,
		ctx:      ctx,
		interval: interval,
		keys:     defaultWatchKeys(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(formatter.StylePurple)),
		table:    table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(12), table.WithStyles(styles)),
		phase:    sweep.PhaseIdle,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadViolations(), m.scheduleRefresh())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Sweep):
			if m.sweeping {
				return m, nil
			}
			m.sweeping = true
			return m, m.runSweep()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadViolations()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case watchRefreshMsg:
		m.phase = m.app.Sweep.State()
		return m, tea.Batch(m.loadViolations(), m.scheduleRefresh())

	case violationsLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.open = len(msg.violations)
			m.table.SetRows(violationRows(msg.violations))
		}
		return m, nil

	case sweepDoneMsg:
		m.sweeping = false
		m.last = msg.result
		m.phase = m.app.Sweep.State()
		return m, m.loadViolations()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header("SLA Watch") + "\n")

	status := formatter.Dim("idle")
	switch {
	case m.sweeping:
		status = m.spinner.View() + " sweeping"
	case m.phase != sweep.PhaseIdle:
		status = m.spinner.View() + " " + string(m.phase)
	}
	openLabel := formatter.StyleGreen.Render("no open violations")
	if m.open > 0 {
		openLabel = formatter.StyleRed.Render(fmt.Sprintf("%d open violation(s)", m.open))
	}
	fmt.Fprintf(&b, "%s  ·  %s\n", status, openLabel)

	if m.last != nil {
		fmt.Fprintf(&b, "%s %s  %s\n", formatter.Dim("last sweep:"), formatter.OutcomePill(m.last.Outcome), m.last.Reason)
	}
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + m.table.View() + "\n")
	b.WriteString(formatter.Dim(fmt.Sprintf("%s %s · %s %s · %s %s",
		m.keys.Sweep.Help().Key, m.keys.Sweep.Help().Desc,
		m.keys.Refresh.Help().Key, m.keys.Refresh.Help().Desc,
		m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc)))
	return b.String()
}

func (m watchModel) loadViolations() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		q := contract.NewViolationQuery()
		open := false
		q.Resolved = &open
		vs, err := app.Ledger.Violations(ctx, q)
		return violationsLoadedMsg{violations: vs, err: err}
	}
}

func (m watchModel) runSweep() tea.Cmd {
	app, ctx := m.app, m.ctx
	return func() tea.Msg {
		return sweepDoneMsg{result: app.Sweep.Run(ctx)}
	}
}

func (m watchModel) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return watchRefreshMsg(t) })
}

func violationRows(vs []*domain.Violation) []table.Row {
	rows := make([]table.Row, 0, len(vs))
	for _, v := range vs {
		id := v.WorkItemID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, table.Row{
			id,
			v.RuleID,
			strings.ToUpper(string(v.Severity)),
			formatter.FormatMinutes(v.Data.ElapsedMinutes),
			formatter.Timestamp(v.CreatedAt),
		})
	}
	return rows
}
