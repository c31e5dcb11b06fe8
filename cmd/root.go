package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/engine"
	"github.com/abhisek/kinderpath/internal/logger"
	"github.com/abhisek/kinderpath/internal/store"
	"github.com/abhisek/kinderpath/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "kinderpath",
	Short: "Adaptive learning engine for kindergarten tutoring",
	Long: `kinderpath recommends what a child should practice next, serves practice
problems, and reports mastery across a skill-prerequisite graph.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides KINDERPATH_DB env var)")
	pf.String("config", "", "Path to a YAML config file")
	pf.Bool("json", false, "Print machine-readable JSON")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(unlockedCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(problemsCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(attemptCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file / KINDERPATH_DATABASE_PATH, then KINDERPATH_DB and the
// default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}
	return cfg, nil
}

// openEngine loads configuration and builds the engine. The returned
// cleanup closes the engine, stops the metrics listener and flushes logs.
func openEngine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	cfg.Database.Path = dbPath

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.New(reg)
	stopMetrics := serveMetrics(cfg.Metrics.Addr, reg, log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	eng, err := engine.Open(ctx, cfg, log, metrics)
	if err != nil {
		stopMetrics()
		log.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		if err := eng.Close(context.Background()); err != nil {
			log.Warn("close engine", "error", err)
		}
		stopMetrics()
		log.Sync()
	}
	return eng, cleanup, nil
}

// serveMetrics exposes reg on addr until the returned stop is called. An
// empty addr does nothing.
func serveMetrics(addr string, reg *prometheus.Registry, log *logger.Logger) func() {
	if addr == "" {
		return func() {}
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
