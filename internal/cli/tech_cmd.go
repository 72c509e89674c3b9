package cli

import (
	"fmt"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/spf13/cobra"
)

func newTechCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tech",
		Short: "Manage technicians",
	}

	cmd.AddCommand(
		newTechAddCmd(app),
		newTechListCmd(app),
		newTechActiveCmd(app, "activate", true),
		newTechActiveCmd(app, "deactivate", false),
	)

	return cmd
}

func newTechAddCmd(app *App) *cobra.Command {
	var name, location string
	var skills []string
	var capacity int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a technician",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := &domain.Technician{
				Name:               name,
				Specialization:     skills,
				MaxDailyTasks:      capacity,
				LocationPreference: location,
				Active:             true,
			}
			if err := app.Technicians.Create(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added technician %s %s\n", formatter.Bold(t.Name), formatter.Dim(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Skill tags, comma separated")
	cmd.Flags().IntVar(&capacity, "capacity", 8, "Maximum open assignments")
	cmd.Flags().StringVar(&location, "location", "", "Preferred location")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTechListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List technicians",
		RunE: func(cmd *cobra.Command, args []string) error {
			techs, err := app.Technicians.List(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if len(techs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No technicians found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTechnicianList(techs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive technicians")

	return cmd
}

func newTechActiveCmd(app *App, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: fmt.Sprintf("%s a technician", capitalize(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTechnicianID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Technicians.SetActive(ctx, id, active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Technician %s %sd\n", t.Name, verb)
			return nil
		},
	}
}
