package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/webui-metrics/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	serveListenAddr string
	serveInterval   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the metrics exporter daemon",
	Long: `Run the exporter daemon: refreshes a usage snapshot from the source
database on a fixed interval and serves it in Prometheus text format.

Endpoints:
  /metrics   Prometheus exposition of the last published snapshot
  /healthz   Liveness check

A failed refresh keeps serving the last-known-good snapshot; scrapes are
never blocked by an in-flight refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveListenAddr != "" {
			cfg.ListenAddr = serveListenAddr
		}
		if serveInterval > 0 {
			cfg.RefreshInterval = serveInterval
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		internal.LogInfo("webui-metrics exporter")
		internal.LogInfo("  Database: %s", cfg.DBPath)
		internal.LogInfo("  Listen:   %s", cfg.ListenAddr)
		internal.LogInfo("  Interval: %ds", cfg.RefreshInterval)

		if err := waitForDatabase(ctx, cfg.DBPath); err != nil {
			return err
		}

		db, err := internal.OpenDatabase(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		storage := internal.NewStorage(db, cfg.DBPath)
		publisher := internal.NewPublisher(storage, cfg.Interval(), cfg.Timeout())

		registry := prometheus.NewRegistry()
		registry.MustRegister(publisher)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})

		server := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: mux,
		}

		go publisher.Run(ctx)

		serverErr := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		internal.LogInfo("Serving metrics on %s/metrics", cfg.ListenAddr)

		select {
		case err := <-serverErr:
			return fmt.Errorf("http server failed: %w", err)
		case <-ctx.Done():
		}

		internal.LogInfo("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

// waitForDatabase blocks until the database file exists. The chat
// application creates it on first write, which may be after this daemon
// starts.
func waitForDatabase(ctx context.Context, path string) error {
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		internal.LogInfo("Waiting for database %s...", path)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Listen address for the metrics endpoint (default :2112)")
	serveCmd.Flags().IntVar(&serveInterval, "interval", 0, "Refresh interval in seconds (default 15)")
}
