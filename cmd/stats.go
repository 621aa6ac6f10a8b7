package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/webui-metrics/internal"
	"github.com/spf13/cobra"
)

var statsTop int

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	metricStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a one-shot usage snapshot",
	Long: `Compute a usage snapshot directly from the source database and print
it as a table. Useful for a quick check without running the daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		accounts, err := storage.LoadAccounts(ctx)
		if err != nil {
			return err
		}
		sessions, err := storage.LoadSessions(ctx, nil)
		if err != nil {
			return err
		}
		snap := internal.Aggregate(accounts, sessions, time.Now())

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Usage Snapshot"))
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\n",
			metricStyle.Render("Total users"), countStyle.Render(fmt.Sprintf("%d", snap.UsersTotal)))
		fmt.Fprintf(w, "%s\t%s\n",
			metricStyle.Render("Active users (30d)"), countStyle.Render(fmt.Sprintf("%d", snap.UsersActive)))
		fmt.Fprintf(w, "%s\t%s\n",
			metricStyle.Render("Chat sessions"), countStyle.Render(fmt.Sprintf("%d", snap.ChatsTotal)))
		fmt.Fprintf(w, "%s\t%s\n",
			metricStyle.Render("Assistant messages"), countStyle.Render(fmt.Sprintf("%d", snap.MessagesTotal)))
		w.Flush()

		printRanked(out, "Responses by model", internal.RankCounts(snap.ModelUsage), statsTop)
		printRanked(out, "Responses by user", internal.RankCounts(snap.UserMessages), statsTop)

		if skipped := storage.SkippedRows(); skipped > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("(%d corrupt chat payload(s) skipped)", skipped)))
		}

		return nil
	},
}

func printRanked(out io.Writer, title string, ranked []internal.LabelCount, top int) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render(title))
	if len(ranked) == 0 {
		fmt.Fprintln(out, labelStyle.Render("  no data"))
		return
	}
	if top > 0 && len(ranked) > top {
		ranked = ranked[:top]
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, entry := range ranked {
		fmt.Fprintf(w, "%s\t%s\n",
			labelStyle.Render(entry.Label), countStyle.Render(fmt.Sprintf("%d", entry.Count)))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "Limit ranked breakdowns to the top N entries (0 = all)")
}
