package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/DikshantJo/code-review-sub002/pkg/cli"
	"github.com/DikshantJo/code-review-sub002/pkg/config"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/logging"
	"github.com/DikshantJo/code-review-sub002/pkg/telemetry/tracing"
)

var (
	// Global flags
	cfgFile   string
	logDir    string
	logLevel  string
	logFormat string

	// Set by the persistent pre-run of every command except version.
	appConfig *config.Config
	appLogger *logging.Logger
	appTracer *tracing.Tracer
)

// tracerFlushTimeout bounds the span flush on exit.
const tracerFlushTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "auditlog",
	Short: "Tamper-evident audit trail for the code review pipeline",
	Long: `auditlog records review pipeline events as hash-chained, compliance-annotated
records in daily JSON Lines files, and manages the lifecycle of those files.

Every record carries a chain entry linking it to the previous record, an
optional compliance section evaluated against the enabled regulatory
frameworks (sox, gdpr, hipaa, pci_dss), and a digest of its payload.

Configuration is read from the file given with --config and from
AUDITLOG_* environment variables, which take precedence over the file.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	shutdownTracer()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("AUDITLOG_CONFIG"), "config file path (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "override the audit log directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override diagnostic log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override diagnostic log format (json, text, console)")
}

// setup loads the configuration and installs the process logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.Install()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}

	appConfig = cfg
	appLogger = logger
	appTracer = tracer

	cmd.SetContext(logging.WithCommand(commandContext(cmd), cmd.Name()))
	return nil
}

// shutdownTracer flushes spans recorded by the command.
func shutdownTracer() {
	if appTracer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), tracerFlushTimeout)
	defer cancel()
	if err := appTracer.Shutdown(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to flush traces:", err)
	}
}

// loadConfig reads the config file (if any), applies environment overrides
// and then the command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}

	if logDir != "" {
		if cfg.Index.Path == filepath.Join(cfg.LogDir, config.DefaultIndexFile) {
			cfg.Index.Path = filepath.Join(logDir, config.DefaultIndexFile)
		}
		cfg.LogDir = logDir
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}
	if logDir != "" || logLevel != "" || logFormat != "" {
		if err := config.Validate(cfg); err != nil {
			return nil, cli.NewConfigError("flags", err.Error())
		}
	}

	return cfg, nil
}
