package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/iksnae/webui-metrics/internal"
	"github.com/spf13/cobra"
)

var reportMonth string

var reportCmd = &cobra.Command{
	Use:   "report [start end]",
	Short: "Generate a date-scoped KPI report",
	Long: `Generate a KPI report for a date range and print it to stdout.

The range is either two YYYY-MM-DD dates or a --month shorthand that
expands to the month's first and last day. Sessions are scoped by their
creation date; the active-user check is evaluated at the range's end.

Examples:
  webui-metrics report 2026-01-01 2026-01-31
  webui-metrics report --month 2026-01`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := resolveReportWindow(args, reportMonth, time.Now())
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := internal.OpenDatabase(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
		defer cancel()

		storage := internal.NewStorage(db, cfg.DBPath)
		report, err := internal.GenerateReport(ctx, storage, window)
		if err != nil {
			return err
		}

		if skipped := storage.SkippedRows(); skipped > 0 {
			internal.LogWarn("Skipped %d corrupt chat payload(s)", skipped)
		}

		fmt.Fprint(cmd.OutOrStdout(), report.Render())
		return nil
	},
}

// resolveReportWindow turns CLI arguments into an extraction window. Either
// two positional dates or the month shorthand must be given, not both.
func resolveReportWindow(args []string, month string, now time.Time) (internal.TimeRange, error) {
	switch {
	case month != "" && len(args) > 0:
		return internal.TimeRange{}, fmt.Errorf("provide either --month or start/end dates, not both")
	case month != "":
		window, err := internal.ParseMonth(month)
		if err != nil {
			return internal.TimeRange{}, err
		}
		return window.CapEnd(now), nil
	case len(args) == 2:
		window, err := internal.ParseRange(args[0], args[1])
		if err != nil {
			return internal.TimeRange{}, err
		}
		return window.CapEnd(now), nil
	default:
		return internal.TimeRange{}, fmt.Errorf("provide either --month YYYY-MM or start and end dates (YYYY-MM-DD)")
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportMonth, "month", "m", "", "Month shortcut (YYYY-MM)")
}
