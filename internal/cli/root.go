package cli

import (
	"time"

	"github.com/alexanderramin/slaguard/internal/service"
	"github.com/alexanderramin/slaguard/internal/sweep"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Rules       service.RuleService
	WorkItems   service.WorkItemService
	Technicians service.TechnicianService
	Sweep       service.SweepService
	Assignments service.AssignmentService
	Ledger      service.LedgerService
	Metrics     service.MetricsService

	// Scheduler runs interval sweeps for serve. Nil disables the command.
	Scheduler *sweep.Scheduler

	// IsInteractive reports whether stdin is a terminal. Forms and spinners
	// only run when it returns true.
	IsInteractive func() bool
	Now           func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// NewRootCmd creates the top-level "slaguard" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "slaguard",
		Short:         "SLA rule engine with escalation and technician assignment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRuleCmd(app),
		newItemCmd(app),
		newTechCmd(app),
		newSweepCmd(app),
		newServeCmd(app),
		newWatchCmd(app),
		newAssignCmd(app),
		newViolationsCmd(app),
		newActionsCmd(app),
		newMetricsCmd(app),
	)

	return root
}
