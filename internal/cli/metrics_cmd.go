package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/cli/formatter"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/spf13/cobra"
)

func newMetricsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "SLA compliance, workload and risk figures",
	}

	cmd.AddCommand(newMetricsComputeCmd(app), newMetricsWorkloadCmd(app), newMetricsPredictCmd(app))

	return cmd
}

func newMetricsComputeCmd(app *App) *cobra.Command {
	var days int
	var from, to string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compliance figures for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := contract.NewMetricsRequest(app.now(), days)
			if from != "" || to != "" {
				start, err := parseDay(from)
				if err != nil {
					return err
				}
				end, err := parseDay(to)
				if err != nil {
					return err
				}
				// --to names the last day included.
				req = contract.MetricsRequest{PeriodStart: start, PeriodEnd: end.AddDate(0, 0, 1)}
			}
			rep, err := app.Metrics.Compute(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMetricsReport(rep))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Trailing window in days")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD), with --to")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD), with --from")
	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("days", "from")

	return cmd
}

func newMetricsWorkloadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Utilization of every active technician",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := app.Metrics.Workload(cmd.Context())
			if err != nil {
				return err
			}
			if len(ws) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No active technicians.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatWorkload(ws))
			return nil
		},
	}
}

func newMetricsPredictCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Estimate SLA risk from recent history",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Metrics.Predict(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPrediction(p))
			return nil
		},
	}
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
