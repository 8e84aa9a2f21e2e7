package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Language-Creation-Society/slotmachine/internal/config"
	"github.com/Language-Creation-Society/slotmachine/internal/models"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:         "sqlite",
		Name:           ":memory:",
		MigrationsPath: "migrations",
	}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Migrate(db, cfg.Driver, cfg.MigrationsPath); err != nil {
		db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	return db, func() { db.Close() }
}

func TestMigrateCreatesRunsAndViolationsTables(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	var name string
	if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='runs'`).Scan(&name); err != nil {
		t.Fatalf("runs table should exist after migration: %v", err)
	}
	if err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='violations'`).Scan(&name); err != nil {
		t.Fatalf("violations table should exist after migration: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := Migrate(db, "sqlite", "migrations"); err != nil {
		t.Fatalf("second Migrate call failed: %v", err)
	}
}

func TestRunAndViolationRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repos := NewRepositories(db, "sqlite")
	ctx := context.Background()

	run := &Run{
		ID:           "run-1",
		Fingerprint:  "abc123",
		Status:       "Infeasible",
		SolverMillis: 42,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := repos.Run.Create(ctx, run); err != nil {
		t.Fatalf("Run.Create: %v", err)
	}

	got, err := repos.Run.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("Run.GetByID: %v", err)
	}
	if got == nil || got.Status != "Infeasible" {
		t.Fatalf("GetByID = %+v, want status Infeasible", got)
	}

	v := &Violation{ID: "v-1", RunID: "run-1", Kind: "constraint", Name: "NO_SPEAKER_CONFLICTS_1_0"}
	if err := repos.Violation.Create(ctx, v); err != nil {
		t.Fatalf("Violation.Create: %v", err)
	}

	violations, err := repos.Violation.ListByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("Violation.ListByRunID: %v", err)
	}
	if len(violations) != 1 || violations[0].Name != "NO_SPEAKER_CONFLICTS_1_0" {
		t.Fatalf("ListByRunID = %+v, want one NO_SPEAKER_CONFLICTS_1_0 entry", violations)
	}
}

func TestLatestByFingerprintReturnsMostRecent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repos := NewRepositories(db, "sqlite")
	ctx := context.Background()

	older := &Run{ID: "run-older", Fingerprint: "same-fp", Status: "Optimal", CreatedAt: time.Now().Add(-time.Hour).UTC().Truncate(time.Second)}
	newer := &Run{ID: "run-newer", Fingerprint: "same-fp", Status: "Optimal", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := repos.Run.Create(ctx, older); err != nil {
		t.Fatalf("Create older: %v", err)
	}
	if err := repos.Run.Create(ctx, newer); err != nil {
		t.Fatalf("Create newer: %v", err)
	}

	latest, err := repos.Run.LatestByFingerprint(ctx, "same-fp")
	if err != nil {
		t.Fatalf("LatestByFingerprint: %v", err)
	}
	if latest == nil || latest.ID != "run-newer" {
		t.Fatalf("LatestByFingerprint = %+v, want run-newer", latest)
	}
}

func TestFingerprintIsStableAndSensitiveToContent(t *testing.T) {
	d1 := &models.Descriptor{Talks: []models.TalkJSON{{ID: 1, Duration: 30}}}
	d2 := &models.Descriptor{Talks: []models.TalkJSON{{ID: 1, Duration: 30}}}
	d3 := &models.Descriptor{Talks: []models.TalkJSON{{ID: 1, Duration: 45}}}

	f1, err := Fingerprint(d1)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	f2, err := Fingerprint(d2)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	f3, err := Fingerprint(d3)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}

	if f1 != f2 {
		t.Errorf("identical descriptors produced different fingerprints: %q vs %q", f1, f2)
	}
	if f1 == f3 {
		t.Errorf("differing descriptors produced the same fingerprint: %q", f1)
	}
}
