package cli

import (
	"fmt"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/spf13/cobra"
)

func newAssignCmd(app *App) *cobra.Command {
	var criteria, by string
	var all bool

	cmd := &cobra.Command{
		Use:   "assign [ITEM...]",
		Short: "Assign work items to the best-scoring technician",
		Long: `Assign work items to the best-scoring technician.

With one item the decision is shown with its ranked alternatives. With
several items, or --all for every unassigned open item, each item is
assigned in turn, most urgent first for --all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 && !all {
				return fmt.Errorf("give at least one work item ID, or --all")
			}
			if len(args) > 0 && all {
				return fmt.Errorf("--all does not take work item IDs")
			}
			ids := make([]string, 0, len(args))
			for _, a := range args {
				id, err := resolveWorkItemID(ctx, app, a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			if len(ids) == 1 {
				req := contract.NewAssignmentRequest(ids[0])
				req.Criteria = domain.ReassignCriteria(criteria)
				req.AssignedBy = by
				res := app.Assignments.Assign(ctx, req)
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatAssignmentResult(res, technicianNames(ctx, app)))
				if res.Outcome == contract.OutcomeFailed {
					return fmt.Errorf("assignment failed: %s", res.Reason)
				}
				return nil
			}

			req := contract.NewBulkAssignmentRequest(ids...)
			req.Criteria = domain.ReassignCriteria(criteria)
			req.AssignedBy = by
			res, err := app.Assignments.AssignBulk(ctx, req)
			if err != nil {
				return err
			}
			if len(res.Results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No unassigned open work items.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBulkAssignment(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria, "criteria", string(domain.CriteriaBestAvailable), "best_available or available_specialist")
	cmd.Flags().StringVar(&by, "by", contract.DefaultAssignedBy, "Who requested the assignment")
	cmd.Flags().BoolVar(&all, "all", false, "Assign every unassigned open work item")

	cmd.AddCommand(newAssignHistoryCmd(app))

	return cmd
}

func newAssignHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history ITEM",
		Short: "Show the assignment decisions recorded for a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveWorkItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			ds, err := app.Assignments.History(ctx, id)
			if err != nil {
				return err
			}
			if len(ds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No assignment decisions recorded.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDecisionHistory(ds, technicianNames(ctx, app)))
			return nil
		},
	}
}
