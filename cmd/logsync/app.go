package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/input-output-hk/catalyst-forge-libs/logsync"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/config"
)

// flags holds the persistent command-line flags.
type flags struct {
	configPath string
	outputDir  string
	bucket     string
	prefix     string
	backend    string
	logFormat  string
	debug      bool
	dryRun     bool
}

// app wires configuration, logging and the client for one invocation.
type app struct {
	flags  flags
	lookup config.LookupFunc

	// zapLogger is built in PersistentPreRunE unless preset
	zapLogger *zap.Logger
	logger    *slog.Logger

	// clientOpts are appended after the configured options
	clientOpts []logsync.Option
}

func newApp(lookup config.LookupFunc) *app {
	return &app{lookup: lookup}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "logsync",
		Short: "Mirror JSON log objects from object storage to local files",
		Long: `logsync downloads JSON log objects from an S3-compatible bucket.

  sync   writes each new object to DD-MM-YYYY-S<n>.json, resuming after the
         newest file already in the output directory
  today  combines every object under today's YYYY/MM/DD key path into one
         line-delimited JSON file
  all    runs sync and then today`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setupLogger,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.zapLogger != nil {
				_ = a.zapLogger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "path to a .cue or .yaml configuration file")
	pf.StringVar(&a.flags.outputDir, "output-dir", "", "local output directory (default \"logs\")")
	pf.StringVar(&a.flags.bucket, "bucket", "", "bucket to read from")
	pf.StringVar(&a.flags.prefix, "prefix", "", "only consider keys under this prefix")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: s3, minio or memory")
	pf.StringVar(&a.flags.logFormat, "log-format", "json", "log format: json or console")
	pf.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Download new objects into per-date sequence files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, false)
		},
	}
	syncCmd.Flags().BoolVar(&a.flags.dryRun, "dry-run", false, "list the files that would be written")

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "Rebuild the combined file from today's objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, true)
		},
	}

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Run sync, then today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, true)
		},
	}

	root.AddCommand(syncCmd, todayCmd, allCmd)
	return root
}

func (a *app) setupLogger(cmd *cobra.Command, args []string) error {
	if a.zapLogger == nil {
		var zcfg zap.Config
		switch a.flags.logFormat {
		case "json":
			zcfg = zap.NewProductionConfig()
		case "console":
			zcfg = zap.NewDevelopmentConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		default:
			return fmt.Errorf("unknown log format %q", a.flags.logFormat)
		}
		if a.flags.debug {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		zl, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.zapLogger = zl
	}

	a.logger = slog.New(zapslog.NewHandler(a.zapLogger.Core())).
		With("run_id", uuid.NewString(), "command", cmd.Name())
	return nil
}

// loadConfig resolves defaults < file < environment < flags.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(billy.NewOSFS(""), a.flags.configPath, a.lookup)
	if err != nil {
		return config.Config{}, err
	}

	fl := cmd.Flags()
	if fl.Changed("bucket") {
		cfg.Bucket = a.flags.bucket
	}
	if fl.Changed("prefix") {
		cfg.Prefix = a.flags.prefix
	}
	if fl.Changed("output-dir") {
		cfg.OutputDir = a.flags.outputDir
	}
	if fl.Changed("backend") {
		cfg.Backend = a.flags.backend
	}
	return cfg, cfg.Validate()
}

func (a *app) run(cmd *cobra.Command, doSync, doAggregate bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		a.logger.ErrorContext(ctx, "invalid configuration", "error", err)
		return err
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts,
		logsync.WithLogger(a.logger),
		logsync.WithDryRun(a.flags.dryRun),
	)
	opts = append(opts, a.clientOpts...)

	client, err := logsync.New(ctx, opts...)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to create client", "error", err)
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	if doSync {
		result, err := client.Sync(ctx)
		if err != nil {
			a.logger.ErrorContext(ctx, "sync failed", "error", err)
			return err
		}
		if a.flags.dryRun {
			fmt.Fprintf(out, "sync: would write %d files\n", len(result.Planned))
		} else {
			fmt.Fprintf(out, "sync: wrote %d files, skipped %d, failed %d\n",
				len(result.Written), len(result.Skipped), len(result.Errors))
		}
	}

	if doAggregate {
		result, err := client.AggregateToday(ctx)
		if err != nil {
			a.logger.ErrorContext(ctx, "aggregation failed", "error", err)
			return err
		}
		if result.Written {
			fmt.Fprintf(out, "today: wrote %d entries from %d objects to %s\n",
				result.Entries, result.Objects, result.Path)
		} else {
			fmt.Fprintf(out, "today: no objects under %s, %s left unchanged\n",
				result.Fragment, result.Path)
		}
	}
	return nil
}
