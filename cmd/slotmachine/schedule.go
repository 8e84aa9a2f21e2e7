package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Language-Creation-Society/slotmachine/internal/logx"
	"github.com/Language-Creation-Society/slotmachine/internal/metrics"
	"github.com/Language-Creation-Society/slotmachine/internal/persistence"
	"github.com/Language-Creation-Society/slotmachine/internal/pipeline"
	"github.com/Language-Creation-Society/slotmachine/internal/scheduler"
)

var outputPath string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Solve the descriptor and print the annotated schedule as JSON",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&descriptorPath, "in", "", "path to the descriptor JSON file (required)")
	scheduleCmd.Flags().StringVar(&outputPath, "out", "", "write the annotated descriptor here instead of stdout")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logx.New(cfg.App.Environment)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	var collectors *metrics.Collectors
	if cfg.Metrics.Address != "" {
		collectors = metrics.New()
		server := &http.Server{Addr: cfg.Metrics.Address, Handler: collectors.Handler()}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("metrics server stopped", "error", err)
			}
		}()
		log.Infow("metrics listening", "address", cfg.Metrics.Address)
	}

	var repos *persistence.Repositories
	var fingerprint string
	persistEnabled := cfg.Persistence.DSN != ""
	if persistEnabled {
		dbCfg, err := databaseConfigFromDSN(cfg.Persistence.DSN)
		if err != nil {
			return err
		}
		db, err := persistence.New(dbCfg)
		if err != nil {
			return fmt.Errorf("open run database: %w", err)
		}
		defer db.Close()
		if err := persistence.Migrate(db, dbCfg.Driver, dbCfg.MigrationsPath); err != nil {
			return fmt.Errorf("migrate run database: %w", err)
		}
		repos = persistence.NewRepositories(db, dbCfg.Driver)
	}

	res, sess, err := buildSession(cfg, log)
	if err != nil {
		return err
	}
	if persistEnabled {
		fp, err := persistence.Fingerprint(res.Descriptor)
		if err != nil {
			return fmt.Errorf("fingerprint descriptor: %w", err)
		}
		fingerprint = fp
	}

	ctx := context.Background()
	if cfg.Solver.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Solver.TimeLimit+5*time.Second)
		defer cancel()
	}

	oracle := scheduler.NewMILPOracle(sess.Options.BranchHeuristic)

	stage := pipeline.Chain(func(ctx context.Context) error {
		if err := sess.Assemble(); err != nil {
			return err
		}
		if collectors != nil {
			collectors.RecordProblem(sess.Problem.NumVariables(), sess.Problem.NumConstraints())
		}
		return sess.Solve(ctx, oracle)
	}, pipeline.Recover(log), pipeline.Timed(log, "schedule"))

	start := time.Now()
	solveErr := stage(ctx)
	elapsed := time.Since(start)

	status := statusNameForError(solveErr)
	if collectors != nil {
		collectors.RecordSolve(status, float64(elapsed.Milliseconds()), 0, false)
	}

	if persistEnabled {
		run := &persistence.Run{
			ID:           uuid.New().String(),
			Fingerprint:  fingerprint,
			Status:       status,
			SolverMillis: elapsed.Milliseconds(),
			CreatedAt:    time.Now().UTC(),
		}
		if createErr := repos.Run.Create(context.Background(), run); createErr != nil {
			log.Errorw("failed to persist run", "error", createErr)
		} else {
			fmt.Printf("run: %s\n", run.ID)
		}
		if unsat, ok := asUnsatisfiable(solveErr); ok {
			for _, name := range unsat.ViolatedConstraints {
				_ = repos.Violation.Create(context.Background(), &persistence.Violation{
					ID: uuid.New().String(), RunID: run.ID, Kind: "constraint", Name: name,
				})
			}
			for _, name := range unsat.ViolatedVariables {
				_ = repos.Violation.Create(context.Background(), &persistence.Violation{
					ID: uuid.New().String(), RunID: run.ID, Kind: "variable", Name: name,
				})
			}
		}
	}

	if solveErr != nil {
		return solveErr
	}

	out, err := sortedJSON(res.Descriptor)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if outputPath == "" {
		_, err = os.Stdout.Write(append(out, '\n'))
		return err
	}
	return os.WriteFile(outputPath, append(out, '\n'), 0o644)
}

// sortedJSON renders v pretty-printed with alphabetically sorted keys and a
// 4-space indent, matching the descriptor's external output contract.
// encoding/json marshals map[string]any keys in sorted order, so round-
// tripping through a generic representation gets sorting for free without a
// custom encoder.
func sortedJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.MarshalIndent(generic, "", "    ")
}

func statusNameForError(err error) string {
	if err == nil {
		return "Optimal"
	}
	if unsat, ok := asUnsatisfiable(err); ok {
		return unsat.Status
	}
	return "Error"
}
