package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/gradetrend/internal/config"
	"github.com/abhisek/gradetrend/internal/logging"
	"github.com/abhisek/gradetrend/internal/store"
	"github.com/abhisek/gradetrend/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "gradetrend",
	Short: "Weekly score improvement analyzer",
	Long: "Gradetrend fits a trend to a student's weekly test scores, sorts the\n" +
		"student into an improvement category and explains why.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default ./gradetrend.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite history database (overrides GRADETREND_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Write JSON logs to this rotating file")
	rootCmd.PersistentFlags().Bool("history", false, "Record results in a local SQLite history database")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config and applies the
// command's flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path from config (--db or db.path)
// first, then the GRADETREND_DB env var, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.DB.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// env holds what every command needs once config is loaded.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store // nil when history is disabled
	shutdown func(context.Context) error
}

// newEnv loads config and builds the logger, history store and tracer.
// Console logs go to console and spans to traceOut; nil disables either.
func newEnv(cmd *cobra.Command, console, traceOut io.Writer) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: console,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	shutdown, err := telemetry.Setup(telemetry.Options{
		Enabled:        cfg.Tracing.Enabled && traceOut != nil,
		Writer:         traceOut,
		ServiceVersion: buildVersion(),
	})
	if err != nil {
		return nil, fmt.Errorf("set up tracing: %w", err)
	}

	e := &env{cfg: cfg, log: log, shutdown: shutdown}
	if !cfg.History.Enabled {
		return e, nil
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("history store opened", zap.String("path", dbPath))
	e.store = st
	return e, nil
}

// history returns the result repository, or nil when history is off.
func (e *env) history() store.ResultRepo {
	if e.store == nil {
		return nil
	}
	return e.store.ResultRepo()
}

func (e *env) Close() {
	if err := e.shutdown(context.Background()); err != nil {
		e.log.Warn("flush traces", zap.Error(err))
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.Warn("close database", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}
