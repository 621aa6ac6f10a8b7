package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/webui-metrics/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the source database is reachable and has the expected schema",
	Long: `Check the exporter's access to the source database by verifying:
  • The database file exists
  • It opens read-only
  • The user and chat tables are present
  • Row counts are readable

Useful for debugging deployments where the database is mounted from the
chat application's container.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Println(sectionStyle.Render("webui-metrics Health Check"))
		fmt.Println()

		// Step 1: database file
		fmt.Println(infoStyle.Render("Step 1: Locating database file..."))
		if _, err := os.Stat(cfg.DBPath); err != nil {
			fmt.Println(errorStyle.Render("  FAIL:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("  OK:"), cfg.DBPath)
		fmt.Println()

		// Step 2: read-only open
		fmt.Println(infoStyle.Render("Step 2: Opening read-only..."))
		db, err := internal.OpenDatabase(cfg.DBPath)
		if err != nil {
			fmt.Println(errorStyle.Render("  FAIL:"), err)
			os.Exit(1)
		}
		defer db.Close()
		fmt.Println(successStyle.Render("  OK: connection established"))
		fmt.Println()

		// Step 3: schema
		fmt.Println(infoStyle.Render("Step 3: Checking schema..."))
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
		defer cancel()

		healthy := true
		for _, table := range []string{"user", "chat"} {
			var count int
			row := db.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
			if err := row.Scan(&count); err != nil {
				fmt.Println(errorStyle.Render("  FAIL:"), err)
				os.Exit(1)
			}
			if count == 0 {
				fmt.Println(warningStyle.Render(fmt.Sprintf("  MISSING: table %q not found", table)))
				healthy = false
				continue
			}

			var rows int
			if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&rows); err != nil {
				fmt.Println(errorStyle.Render("  FAIL:"), err)
				os.Exit(1)
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("  OK: table %q (%d rows)", table, rows)))
		}
		fmt.Println()

		if !healthy {
			fmt.Println(errorStyle.Render("Health check failed: schema mismatch"))
			return fmt.Errorf("health check failed: expected tables missing")
		}
		fmt.Println(successStyle.Render("Health check passed"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
