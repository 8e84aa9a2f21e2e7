// Package persistence records solver runs and their diagnosed violations,
// so repeated invocations over the same or similar descriptors can be
// compared without re-solving. Optional: the CLI works with or without a
// configured database.
package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Language-Creation-Society/slotmachine/internal/config"
)

// New opens a connection pool for the configured driver. SQLite needs no
// network round trip to validate, but Postgres does — both are pinged here
// so a bad DSN fails at startup rather than on the first query.
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	driver := cfg.Driver
	if driver == "sqlite" {
		driver = "sqlite"
	} else {
		driver = "postgres"
	}
	db, err := sql.Open(driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("persistence: ping %s: %w", driver, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// Migrate applies every *.up.sql file under migrationsPath not already
// recorded in schema_migrations, in filename order, each inside its own
// transaction. driver selects $N vs ? placeholder syntax for the
// bookkeeping insert; the migration files themselves must already be
// written in the target driver's dialect.
func Migrate(db *sql.DB, driver, migrationsPath string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("persistence: create schema_migrations: %w", err)
	}

	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("persistence: query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("persistence: scan schema_migrations: %w", err)
		}
		applied[version] = true
	}

	files, err := os.ReadDir(migrationsPath)
	if err != nil {
		return fmt.Errorf("persistence: read migrations dir: %w", err)
	}
	var migrations []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".up.sql") {
			migrations = append(migrations, f.Name())
		}
	}
	sort.Strings(migrations)

	for _, migration := range migrations {
		version := strings.TrimSuffix(migration, ".up.sql")
		if applied[version] {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsPath, migration))
		if err != nil {
			return fmt.Errorf("persistence: read migration %s: %w", migration, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("persistence: begin migration %s: %w", migration, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("persistence: apply migration %s: %w", migration, err)
		}
		if _, err := tx.Exec(q(driver, "INSERT INTO schema_migrations (version, applied_at) VALUES ($1, CURRENT_TIMESTAMP)"), version); err != nil {
			tx.Rollback()
			return fmt.Errorf("persistence: record migration %s: %w", migration, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("persistence: commit migration %s: %w", migration, err)
		}
	}

	return nil
}
