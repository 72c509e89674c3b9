package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage work items",
	}

	cmd.AddCommand(
		newItemAddCmd(app),
		newItemListCmd(app),
		newItemShowCmd(app),
		newItemStatusCmd(app),
		newItemPriorityCmd(app),
	)

	return cmd
}

func newItemAddCmd(app *App) *cobra.Command {
	var title, priority, skill, location, due string
	var dueIn time.Duration

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a work item; matching rules fire immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := &domain.WorkItem{
				Title:         title,
				Priority:      domain.Priority(priority),
				RequiredSkill: skill,
				Location:      location,
			}
			switch {
			case due != "" && dueIn != 0:
				return fmt.Errorf("use either --due or --due-in, not both")
			case due != "":
				d, err := time.Parse(time.RFC3339, due)
				if err != nil {
					return fmt.Errorf("invalid due deadline %q (want RFC 3339): %w", due, err)
				}
				d = d.UTC()
				w.DueDeadline = &d
			case dueIn != 0:
				d := app.now().Add(dueIn)
				w.DueDeadline = &d
			}

			res, err := app.WorkItems.Create(cmd.Context(), w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created work item %s %s\n", formatter.Bold(res.WorkItem.Title), formatter.Dim(res.WorkItem.ID))
			printEffects(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "low, medium, high or critical")
	cmd.Flags().StringVar(&skill, "skill", "", "Required skill tag")
	cmd.Flags().StringVar(&location, "location", "", "Location")
	cmd.Flags().StringVar(&due, "due", "", "Due deadline (RFC 3339)")
	cmd.Flags().DurationVar(&dueIn, "due-in", 0, "Due deadline relative to now, e.g. 4h")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	var status, tech string
	var all bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work items, open ones by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f := repository.WorkItemFilter{
				Status:          domain.WorkItemStatus(status),
				IncludeTerminal: all || domain.WorkItemStatus(status).IsTerminal(),
				Limit:           limit,
			}
			if status != "" && !f.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			if tech != "" {
				id, err := resolveTechnicianID(ctx, app, tech)
				if err != nil {
					return err
				}
				f.TechnicianID = id
			}

			items, err := app.WorkItems.List(ctx, f)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No work items found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkItemList(items, technicianNames(ctx, app), app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only items in this status")
	cmd.Flags().StringVar(&tech, "tech", "", "Only items assigned to this technician")
	cmd.Flags().BoolVar(&all, "all", false, "Include completed and cancelled items")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items")

	return cmd
}

func newItemShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a work item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveWorkItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			w, err := app.WorkItems.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatWorkItemDetail(w, technicianNames(ctx, app), app.now()))
			return nil
		},
	}
}

func newItemStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Change a work item's status",
		Long:  "Change a work item's status. Completing or cancelling an item resolves its open violations.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveWorkItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			res, err := app.WorkItems.ChangeStatus(ctx, id, domain.WorkItemStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", formatter.Bold(res.WorkItem.Title), formatter.StatusPill(res.WorkItem.Status))
			printEffects(cmd, res)
			return nil
		},
	}
}

func newItemPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority ID PRIORITY",
		Short: "Change a work item's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveWorkItemID(ctx, app, args[0])
			if err != nil {
				return err
			}
			res, err := app.WorkItems.ChangePriority(ctx, id, domain.Priority(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s priority is now %s\n", formatter.Bold(res.WorkItem.Title), formatter.PriorityPill(res.WorkItem.Priority))
			printEffects(cmd, res)
			return nil
		},
	}
}

func printEffects(cmd *cobra.Command, res *contract.ChangeResult) {
	if s := formatter.FormatChangeEffects(res.Effects); s != "" {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
}
