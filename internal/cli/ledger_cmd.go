package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/spf13/cobra"
)

func newViolationsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "violations",
		Short: "Inspect recorded SLA violations",
	}

	cmd.AddCommand(newViolationsListCmd(app), newViolationsStatsCmd(app))

	return cmd
}

func newViolationsListCmd(app *App) *cobra.Command {
	var item, rule string
	var open, resolved bool
	var since time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List violations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if open && resolved {
				return fmt.Errorf("--open and --resolved are mutually exclusive")
			}
			q := contract.NewViolationQuery()
			q.RuleID = rule
			q.Limit = limit
			if item != "" {
				id, err := resolveWorkItemID(ctx, app, item)
				if err != nil {
					return err
				}
				q.WorkItemID = id
			}
			if open || resolved {
				q.Resolved = &resolved
			}
			if since > 0 {
				from := app.now().Add(-since)
				q.From = &from
			}

			vs, err := app.Ledger.Violations(ctx, q)
			if err != nil {
				return err
			}
			if len(vs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No violations found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatViolationList(vs))
			return nil
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "Only violations of this work item")
	cmd.Flags().StringVar(&rule, "rule", "", "Only violations of this rule")
	cmd.Flags().BoolVar(&open, "open", false, "Only unresolved violations")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Only resolved violations")
	cmd.Flags().DurationVar(&since, "since", 0, "Only violations detected within this window, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", contract.DefaultQueryLimit, "Maximum number of violations")

	return cmd
}

func newViolationsStatsCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count violations per day and severity",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Ledger.ViolationStats(cmd.Context(), days)
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No violations in the last %d day(s).\n", days)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatViolationStats(stats))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Trailing window in days, today included")

	return cmd
}

func newActionsCmd(app *App) *cobra.Command {
	var item, rule string
	var since time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the action audit log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q := contract.NewActionQuery()
			q.RuleID = rule
			q.Limit = limit
			if item != "" {
				id, err := resolveWorkItemID(ctx, app, item)
				if err != nil {
					return err
				}
				q.WorkItemID = id
			}
			if since > 0 {
				from := app.now().Add(-since)
				q.From = &from
			}

			entries, err := app.Ledger.Actions(ctx, q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No actions recorded.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActionList(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "Only actions on this work item")
	cmd.Flags().StringVar(&rule, "rule", "", "Only actions requested by this rule")
	cmd.Flags().DurationVar(&since, "since", 0, "Only actions within this window, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", contract.DefaultQueryLimit, "Maximum number of entries")

	return cmd
}
