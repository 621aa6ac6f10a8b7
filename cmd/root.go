package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/webui-metrics/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	dbPath     string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webui-metrics",
	Short: "Export usage metrics and KPI reports from a chat application's database",
	Long: `A metrics exporter and KPI report generator for an Open WebUI-style
chat application. It reads the application's SQLite database (read-only,
the application keeps the write lock) and turns it into:

  • A Prometheus metrics endpoint refreshed on a fixed interval
  • Date-scoped KPI reports for management, printed as text

Quick Start:
  webui-metrics serve --db /data/webui.db     # Run the exporter daemon
  webui-metrics report --month 2026-01        # Monthly KPI report
  webui-metrics report 2026-01-01 2026-01-31  # Explicit date range
  webui-metrics stats                         # One-shot usage summary`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the chat application's SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration: defaults, optional YAML
// file, environment, then flags.
func loadConfig() (internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath, configPath != "")
	if err != nil {
		return internal.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}
