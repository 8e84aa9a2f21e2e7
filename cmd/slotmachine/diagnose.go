package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Language-Creation-Society/slotmachine/internal/persistence"
)

var runID string

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Replay a persisted run's violated constraints and variables",
	RunE:  runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&runID, "run", "", "ID of a previously scheduled run (required)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	if runID == "" {
		return fmt.Errorf("diagnose requires --run <id>")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Persistence.DSN == "" {
		return fmt.Errorf("diagnose requires --persist-dsn or SLOTMACHINE_PERSIST_DSN to locate the run database")
	}

	dbCfg, err := databaseConfigFromDSN(cfg.Persistence.DSN)
	if err != nil {
		return err
	}
	db, err := persistence.New(dbCfg)
	if err != nil {
		return fmt.Errorf("open run database: %w", err)
	}
	defer db.Close()

	repos := persistence.NewRepositories(db, dbCfg.Driver)
	ctx := context.Background()

	run, err := repos.Run.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("look up run %s: %w", runID, err)
	}
	if run == nil {
		return fmt.Errorf("no run recorded with ID %s", runID)
	}

	fmt.Printf("run %s: status=%s solver_millis=%d fingerprint=%s\n", run.ID, run.Status, run.SolverMillis, run.Fingerprint)

	violations, err := repos.Violation.ListByRunID(ctx, runID)
	if err != nil {
		return fmt.Errorf("list violations for run %s: %w", runID, err)
	}
	if len(violations) == 0 {
		fmt.Println("no violations recorded for this run")
		return nil
	}
	for _, v := range violations {
		fmt.Printf("violated %s: %s\n", v.Kind, v.Name)
	}
	return nil
}
