package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/audit/ledger"
	"github.com/DikshantJo/code-review-sub002/pkg/audit/retention"
	"github.com/DikshantJo/code-review-sub002/pkg/cli"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/health"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/metrics"
)

const shutdownTimeout = 10 * time.Second

// reloadMu serializes reloads from the file watcher and SIGHUP.
var reloadMu sync.Mutex

var runFlags struct {
	listenAddress string
	noMetrics     bool
	verifyOnStart bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheduled retention with metrics until stopped",
	Long: `Run the audit service until SIGINT or SIGTERM.

While running, auditlog:
  - runs retention cleanup on the configured cron schedule
  - serves Prometheus metrics and health probes (/health, /ready, /version)
  - reloads the configuration file on change (with --watch or watch: true)
    and on SIGHUP, re-applying the log policy, compliance settings and
    retention policy to the ledger

Examples:
  # Run with a config file and hot reload
  auditlog run --config /etc/auditlog/auditlog.yaml --watch

  # Serve metrics on all interfaces
  auditlog run --listen 0.0.0.0:9464`,
	Args: cobra.NoArgs,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override the metrics listen address")
	runCmd.Flags().BoolVar(&runFlags.noMetrics, "no-metrics", false, "do not serve metrics and health probes")
	runCmd.Flags().BoolVar(&runFlags.verifyOnStart, "verify", false, "verify the audit trail before starting")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload the config file when it changes")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if runFlags.listenAddress != "" {
		cfg.Telemetry.Metrics.ListenAddress = runFlags.listenAddress
	}
	if runFlags.noMetrics {
		cfg.Telemetry.Metrics.Enabled = false
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	l, err := openLedger(cfg, collector)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer l.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "auditlog v%s\n", Version)
	fmt.Fprintf(out, "✓ Audit ledger ready (%s)\n", cfg.LogDir)

	if runFlags.verifyOnStart {
		result := l.VerifyAuditTrailIntegrity(ctx)
		if !result.Verified {
			return cli.NewIntegrityFailure("run", len(result.Errors))
		}
		fmt.Fprintf(out, "✓ Audit trail verified (%d entries)\n", result.EntriesVerified)
	}

	scheduler := retention.NewScheduler(cfg.Retention.Schedule, l.PerformDataRetentionCleanup, nil)
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer scheduler.Stop()
	if next := scheduler.NextRun(); next != nil {
		fmt.Fprintf(out, "✓ Retention cleanup scheduled (%s, next %s)\n", cfg.Retention.Schedule, next.Format(time.RFC3339))
	}

	errChan := make(chan error, 2)

	var srv *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		checker := newHealthChecker(l)
		srv = newTelemetryServer(cfg, collector, checker)
		go func() {
			slog.Info("starting telemetry server", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("telemetry server error: %w", err)
			}
		}()
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", srv.Addr, cfg.Telemetry.Metrics.Path)
		fmt.Fprintf(out, "✓ Health checks: %s\n", strings.Join(checker.ListChecks(), ", "))
	}

	reload := func(next *config.Config) error {
		return applyReload(l, next)
	}

	if (runFlags.watch || cfg.Watch) && cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, nil)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Stop()

		go func() {
			if err := watcher.Watch(ctx, reload); err != nil {
				errChan <- fmt.Errorf("config watcher error: %w", err)
			}
		}()
		fmt.Fprintf(out, "✓ Watching %s for changes\n", cfgFile)
	}

	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()
	for {
		select {
		case err := <-errChan:
			shutdown(srv)
			return cli.NewCommandError("run", err)

		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				reloadFromFile(reload)
				continue
			}
			fmt.Fprintf(out, "\nReceived signal %s, shutting down gracefully...\n", sig)
			cancel()
			return shutdown(srv)

		case <-ctx.Done():
			return shutdown(srv)
		}
	}
}

// newHealthChecker registers the readiness checks of a running ledger.
func newHealthChecker(l *ledger.Ledger) *health.Checker {
	checker := health.New(2 * time.Second)
	checker.RegisterCheck("log_dir", health.DirectoryCheck(afero.NewOsFs(), l.Dir()))
	checker.RegisterCheck("ledger", health.StateCheck(l.Closed, "audit ledger closed"))
	checker.RegisterCheck("writes", health.WriteErrorCheck(func() int64 {
		return l.Stats().WriteErrors
	}))
	return checker
}

// newTelemetryServer serves metrics and health probes on the metrics address.
func newTelemetryServer(cfg *config.Config, collector *metrics.Collector, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
	health.Register(mux, checker, Version, GitCommit, BuildDate)

	return &http.Server{
		Addr:              cfg.Telemetry.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// applyReload re-applies a reloaded configuration to the running ledger and
// the process logger. Settings that need a restart are logged once per
// change and otherwise ignored.
func applyReload(l *ledger.Ledger, next *config.Config) error {
	reloadMu.Lock()
	defer reloadMu.Unlock()

	for _, setting := range restartRequired(appConfig, next) {
		slog.Warn(setting+" changed, restart required to apply", "log_dir", l.Dir())
	}

	l.ApplyConfig(next)
	appConfig = next

	if appLogger != nil {
		if err := appLogger.SetLevel(next.Telemetry.Logging.Level); err != nil {
			return err
		}
	}
	return nil
}

// restartRequired names the settings that differ between the previously
// loaded configuration and next but cannot be applied at runtime.
func restartRequired(prev, next *config.Config) []string {
	if prev == nil {
		return nil
	}
	var changed []string
	if next.LogDir != prev.LogDir {
		changed = append(changed, "log_dir")
	}
	if next.Index != prev.Index {
		changed = append(changed, "index")
	}
	return changed
}

// reloadFromFile reloads the config file on SIGHUP.
func reloadFromFile(reload func(*config.Config) error) {
	if cfgFile == "" {
		slog.Info("received SIGHUP without a config file, nothing to reload")
		return
	}
	next, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		slog.Error("config reload failed, keeping previous configuration", "error", err)
		return
	}
	if err := reload(next); err != nil {
		slog.Error("applying reloaded config failed", "error", err)
		return
	}
	slog.Info("config reloaded on SIGHUP", "path", cfgFile)
}

func shutdown(srv *http.Server) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
		return cli.NewCommandError("run", err)
	}
	return nil
}
