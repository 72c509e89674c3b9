package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/spf13/cobra"
)

func newRuleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Manage the SLA rule catalog",
	}

	cmd.AddCommand(
		newRuleListCmd(app),
		newRuleShowCmd(app),
		newRuleNewCmd(app),
		newRuleToggleCmd(app, "enable", true),
		newRuleToggleCmd(app, "disable", false),
		newRuleDeleteCmd(app),
		newRuleSeedCmd(app),
		newRuleImportCmd(app),
		newRuleExportCmd(app),
	)

	return cmd
}

func newRuleListCmd(app *App) *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := app.Rules.List(cmd.Context(), enabledOnly)
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules found. Run 'slaguard rule seed' to install the defaults.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRuleList(rules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Only show enabled rules")

	return cmd
}

func newRuleShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a rule's conditions and actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Rules.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRuleDetail(r))
			return nil
		},
	}
}

func newRuleNewCmd(app *App) *cobra.Command {
	var (
		d        ruleDraft
		when     []string
		then     []string
		priority int
		disabled bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a rule from flags, or interactively when no --id is given",
		Example: `  slaguard rule new --id late_pickups --name "Late pickups" --severity high \
    --when priority=high --when elapsed>=120 --then escalate=supervisor --then notify=admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if d.ID == "" {
				if !app.interactive() {
					return fmt.Errorf("--id is required when not running in a terminal")
				}
				d.Priority = strconv.Itoa(priority)
				if err := ruleForm(&d).Run(); err != nil {
					return err
				}
				p, err := strconv.Atoi(d.Priority)
				if err != nil {
					return fmt.Errorf("invalid priority %q: %w", d.Priority, err)
				}
				priority = p
				when = splitExprLines(d.When)
				then = splitExprLines(d.Then)
			}

			conds, err := parseConditionExprs(when)
			if err != nil {
				return err
			}
			acts, err := parseActionExprs(then)
			if err != nil {
				return err
			}
			enabled := !disabled
			r, err := domain.RuleSpec{
				ID:          d.ID,
				Name:        d.Name,
				Description: d.Description,
				Severity:    d.Severity,
				Enabled:     &enabled,
				Priority:    priority,
				Conditions:  conds,
				Actions:     acts,
			}.ToRule()
			if err != nil {
				return err
			}
			if err := app.Rules.Create(cmd.Context(), r); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s\n", formatter.Bold(r.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&d.ID, "id", "", "Rule key (lowercase letters, digits, '_' or '-')")
	cmd.Flags().StringVar(&d.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&d.Description, "description", "", "Description")
	cmd.Flags().StringVar(&d.Severity, "severity", string(domain.SeverityMedium), "low, medium, high or critical")
	cmd.Flags().IntVar(&priority, "priority", 50, "Evaluation order, higher first")
	cmd.Flags().StringArrayVar(&when, "when", nil, "Condition expression (repeatable, all must hold)")
	cmd.Flags().StringArrayVar(&then, "then", nil, "Action expression (repeatable, run in order)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the rule disabled")

	return cmd
}

func newRuleToggleCmd(app *App, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID",
		Short: fmt.Sprintf("%s a rule", capitalize(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Rules.SetEnabled(cmd.Context(), args[0], enabled)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s %sd\n", r.ID, verb)
			return nil
		},
	}
}

func newRuleDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a rule; its violation history is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Rules.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
			return nil
		},
	}
}

func newRuleSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the built-in rules that are missing from the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.Rules.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d default rule(s)\n", n)
			return nil
		},
	}
}

func newRuleImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create or replace rules from a YAML file ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening rules file: %w", err)
				}
				defer f.Close()
				r = f
			}
			res, err := app.Rules.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported rules: %d created, %d updated\n", res.Created, res.Updated)
			return nil
		},
	}
}

func newRuleExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the catalog as YAML to FILE or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return app.Rules.Export(cmd.Context(), cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating rules file: %w", err)
			}
			if err := app.Rules.Export(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported rules to %s\n", args[0])
			return nil
		},
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
