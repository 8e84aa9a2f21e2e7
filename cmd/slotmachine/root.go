package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Language-Creation-Society/slotmachine/internal/config"
	"github.com/Language-Creation-Society/slotmachine/internal/domain"
	"github.com/Language-Creation-Society/slotmachine/internal/loader"
	"github.com/Language-Creation-Society/slotmachine/internal/milp"
	"github.com/Language-Creation-Society/slotmachine/internal/models"
	"github.com/Language-Creation-Society/slotmachine/internal/pipeline"
	"github.com/Language-Creation-Society/slotmachine/internal/scheduler"
)

var (
	descriptorPath  string
	threads         int
	timeLimit       time.Duration
	spacingSlots    int
	bigM            float64
	branchFlag      string
	envFlag         string
	persistDSN      string
	metricsAddrFlag string
)

var rootCmd = &cobra.Command{
	Use:   "slotmachine",
	Short: "Build and solve a conference talk scheduling MILP",
	Long: `slotmachine turns a conference descriptor (talks, venues, people,
time windows) into an integer program and solves it for a slot/venue
assignment that satisfies every hard constraint and maximizes the
weighted preference objective.`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&threads, "threads", 0, "branch-and-bound worker count (0 uses the configured default)")
	rootCmd.PersistentFlags().DurationVar(&timeLimit, "time-limit", 0, "solve time limit, e.g. 30s (0 uses the configured default)")
	rootCmd.PersistentFlags().IntVar(&spacingSlots, "spacing-slots", 0, "default post-talk spacing in slots for talks with no spacing_slots of their own (0 uses the configured default)")
	rootCmd.PersistentFlags().Float64Var(&bigM, "big-m", 0, "big-M constant override (0 derives it from the descriptor)")
	rootCmd.PersistentFlags().StringVar(&branchFlag, "branch", "", "branch heuristic: most-fractional, max-fun, or naive (empty uses the configured default)")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "logging environment: development or production (empty uses APP_ENV)")
	rootCmd.PersistentFlags().StringVar(&persistDSN, "persist-dsn", "", "sqlite:<path> or postgres:<connection-string>; enables run persistence when set")
	rootCmd.PersistentFlags().StringVar(&metricsAddrFlag, "metrics-addr", "", "address to serve /metrics on; enables the metrics listener when set")

	rootCmd.AddCommand(scheduleCmd, validateCmd, diagnoseCmd)
}

// exitCodeFor maps a returned error to the CLI's three-tier exit status:
// 0 on Optimal, 1 on Unsatisfiable or a malformed descriptor, 2 when the
// oracle itself could not be invoked.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var solverUnavailable *domain.SolverUnavailableError
	if errors.As(err, &solverUnavailable) {
		return 2
	}
	var panicErr *pipeline.PanicError
	if errors.As(err, &panicErr) {
		return 2
	}
	return 1
}

// asUnsatisfiable extracts a *domain.UnsatisfiableError from err, if any.
func asUnsatisfiable(err error) (*domain.UnsatisfiableError, bool) {
	var unsat *domain.UnsatisfiableError
	if errors.As(err, &unsat) {
		return unsat, true
	}
	return nil, false
}

// databaseConfigFromDSN parses a --persist-dsn value of the form
// "sqlite:<path>" or "postgres:<connection-string>" into a DatabaseConfig.
// The result is built from the DSN alone; cfg.Database's env-sourced
// settings are not consulted.
func databaseConfigFromDSN(dsn string) (config.DatabaseConfig, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return config.DatabaseConfig{Driver: "sqlite", Name: strings.TrimPrefix(dsn, "sqlite:"), MigrationsPath: "internal/persistence/migrations"}, nil
	case strings.HasPrefix(dsn, "postgres:"):
		return config.DatabaseConfig{Driver: "postgres", Name: strings.TrimPrefix(dsn, "postgres:"), MigrationsPath: "internal/persistence/migrations"}, nil
	default:
		return config.DatabaseConfig{}, fmt.Errorf("--persist-dsn must start with sqlite: or postgres:, got %q", dsn)
	}
}

// loadConfig merges environment-sourced configuration with any CLI flag
// overrides; a flag wins whenever it is set to a non-zero/non-empty value.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if threads > 0 {
		cfg.Solver.Threads = threads
	}
	if timeLimit > 0 {
		cfg.Solver.TimeLimit = timeLimit
	}
	if spacingSlots > 0 {
		cfg.Solver.SpacingSlots = spacingSlots
	}
	if bigM > 0 {
		cfg.Solver.BigM = bigM
	}
	if branchFlag != "" {
		cfg.Solver.BranchHeuristic = branchFlag
	}
	if envFlag != "" {
		cfg.App.Environment = envFlag
	}
	if persistDSN != "" {
		cfg.Persistence.DSN = persistDSN
	}
	if metricsAddrFlag != "" {
		cfg.Metrics.Address = metricsAddrFlag
	}
	return cfg, nil
}

func branchHeuristicFromName(name string) (milp.BranchHeuristic, error) {
	switch name {
	case "", "most-fractional":
		return milp.BranchMostFractional, nil
	case "max-fun":
		return milp.BranchMaxFun, nil
	case "naive":
		return milp.BranchNaive, nil
	default:
		return 0, fmt.Errorf("unknown branch heuristic %q", name)
	}
}

// loadDescriptorFile reads and parses the descriptor JSON named by --in
// into the *models.Descriptor that loader.Load consumes.
func loadDescriptorFile(path string) (*models.Descriptor, error) {
	if path == "" {
		return nil, &domain.BadDescriptorError{Reason: "no --in file given"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var d models.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &domain.BadDescriptorError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return &d, nil
}

// buildSession loads the descriptor, builds the domain indexes, and
// constructs a scheduler.Session ready for Assemble/Solve.
func buildSession(cfg *config.Config, log *zap.SugaredLogger) (*loader.Result, *scheduler.Session, error) {
	d, err := loadDescriptorFile(descriptorPath)
	if err != nil {
		return nil, nil, err
	}
	res, err := loader.Load(d, cfg.Solver.SpacingSlots)
	if err != nil {
		return nil, nil, err
	}
	heuristic, err := branchHeuristicFromName(cfg.Solver.BranchHeuristic)
	if err != nil {
		return nil, nil, err
	}
	opts := scheduler.Options{
		BigM:            cfg.Solver.BigM,
		Threads:         cfg.Solver.Threads,
		TimeLimit:       int(cfg.Solver.TimeLimit / time.Millisecond),
		BranchHeuristic: heuristic,
	}
	sess := scheduler.NewSession(res, opts, log)
	return res, sess, nil
}
