package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/spf13/cobra"
)

var errNoScheduler = errors.New("sweep scheduler is not configured")

func newSweepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate every open work item against the rule catalog",
	}

	cmd.AddCommand(newSweepRunCmd(app), newSweepStatusCmd(app))

	return cmd
}

func newSweepRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Sweeping open work items...")
			}
			res := app.Sweep.Run(cmd.Context())
			stop()

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSweepResult(res))
			if res.Outcome == contract.OutcomeFailed {
				return fmt.Errorf("sweep failed: %s", res.Reason)
			}
			return nil
		},
	}
}

func newSweepStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the phase of the running sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "phase: %s\n", app.Sweep.State())
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	var skipFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sweep on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Scheduler == nil {
				return errNoScheduler
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Sweeping every %s. Press Ctrl+C to stop.\n", app.Scheduler.Interval())
			if err := app.Scheduler.Start(ctx, !skipFirst); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %d sweep(s), %d tick(s) dropped.\n",
				app.Scheduler.Runs(), app.Scheduler.Dropped())
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipFirst, "wait", false, "Wait one interval before the first sweep")

	return cmd
}
