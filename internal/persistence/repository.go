package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"time"
)

// Repositories holds every persistence.Repositories instance a Session's
// caller may want: one run per solve, zero or more violations per run.
type Repositories struct {
	Run       *RunRepository
	Violation *ViolationRepository
}

// NewRepositories wires both repositories to the same connection pool.
func NewRepositories(db *sql.DB, driver string) *Repositories {
	return &Repositories{
		Run:       &RunRepository{db: db, driver: driver},
		Violation: &ViolationRepository{db: db, driver: driver},
	}
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// q rewrites PostgreSQL-style ($1, $2, ...) placeholders to SQLite's (?)
// when driver is sqlite; a no-op for postgres.
func q(driver, query string) string {
	if driver == "sqlite" {
		return placeholderPattern.ReplaceAllString(query, "?")
	}
	return query
}

// Run records one Session.Solve invocation: the descriptor it ran against
// (by fingerprint, not by content), its terminal status, and the objective
// value on success.
type Run struct {
	ID           string
	Fingerprint  string
	Status       string
	Objective    sql.NullFloat64
	SolverMillis int64
	CreatedAt    time.Time
}

type RunRepository struct {
	db     *sql.DB
	driver string
}

func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	query := q(r.driver, `
		INSERT INTO runs (id, fingerprint, status, objective, solver_millis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Fingerprint, run.Status, run.Objective, run.SolverMillis, run.CreatedAt)
	return err
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	run := &Run{}
	query := q(r.driver, `
		SELECT id, fingerprint, status, objective, solver_millis, created_at
		FROM runs WHERE id = $1
	`)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Fingerprint, &run.Status, &run.Objective, &run.SolverMillis, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// LatestByFingerprint returns the most recent prior run over an identical
// descriptor, so a new solve's objective can be compared against it.
func (r *RunRepository) LatestByFingerprint(ctx context.Context, fingerprint string) (*Run, error) {
	run := &Run{}
	query := q(r.driver, `
		SELECT id, fingerprint, status, objective, solver_millis, created_at
		FROM runs WHERE fingerprint = $1
		ORDER BY created_at DESC LIMIT 1
	`)
	err := r.db.QueryRowContext(ctx, query, fingerprint).Scan(
		&run.ID, &run.Fingerprint, &run.Status, &run.Objective, &run.SolverMillis, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// Violation records one named constraint or variable the infeasibility
// diagnosis flagged for a run that ended non-Optimal.
type Violation struct {
	ID    string
	RunID string
	Kind  string // "constraint" or "variable"
	Name  string
}

type ViolationRepository struct {
	db     *sql.DB
	driver string
}

func (r *ViolationRepository) Create(ctx context.Context, v *Violation) error {
	query := q(r.driver, `
		INSERT INTO violations (id, run_id, kind, name)
		VALUES ($1, $2, $3, $4)
	`)
	_, err := r.db.ExecContext(ctx, query, v.ID, v.RunID, v.Kind, v.Name)
	return err
}

func (r *ViolationRepository) ListByRunID(ctx context.Context, runID string) ([]*Violation, error) {
	query := q(r.driver, `
		SELECT id, run_id, kind, name FROM violations WHERE run_id = $1 ORDER BY kind, name
	`)
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Violation
	for rows.Next() {
		v := &Violation{}
		if err := rows.Scan(&v.ID, &v.RunID, &v.Kind, &v.Name); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
