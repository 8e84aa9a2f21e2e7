package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database    DatabaseConfig
	Solver      SolverConfig
	Persistence PersistenceConfig
	Metrics     MetricsConfig
	App         AppConfig
}

// DatabaseConfig holds run-persistence database configuration. Load fills
// it from the DB_* environment variables; the CLI builds its own from the
// --persist-dsn/SLOTMACHINE_PERSIST_DSN value and disables persistence when
// that value is empty.
type DatabaseConfig struct {
	Driver         string // "postgres" or "sqlite"
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// SolverConfig holds the MILP oracle's default tuning knobs, overridable
// per invocation by CLI flags.
type SolverConfig struct {
	BigM            float64
	Threads         int
	TimeLimit       time.Duration
	SpacingSlots    int // global default for talks with no spacing_slots of their own
	BranchHeuristic string // "most-fractional", "max-fun", or "naive"
}

// PersistenceConfig controls the optional run/violation persistence store.
type PersistenceConfig struct {
	DSN string // "sqlite:<path>" or "postgres:<connection-string>"; empty disables persistence
}

// MetricsConfig controls the optional /metrics HTTP listener.
type MetricsConfig struct {
	Address string // empty disables the listener
}

// AppConfig holds application-wide configuration.
type AppConfig struct {
	Environment string // "development" or "production"
}

// ConnectionString returns the database connection string.
func (d DatabaseConfig) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.Name // For SQLite, Name is the file path.
	}
	if d.Host == "" {
		return d.Name // Name already holds a full postgres DSN/URL (e.g. from --persist-dsn).
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", "sqlite"),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "slotmachine"),
			Password:       getEnv("DB_PASSWORD", "slotmachine"),
			Name:           getEnv("DB_NAME", "slotmachine.db"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/persistence/migrations"),
		},
		Solver: SolverConfig{
			BigM:            getEnvFloat("SLOTMACHINE_BIG_M", 0), // 0 means Session derives it from the loaded problem
			Threads:         getEnvInt("SLOTMACHINE_THREADS", 4),
			TimeLimit:       getEnvDuration("SLOTMACHINE_TIME_LIMIT", 30*time.Second),
			SpacingSlots:    getEnvInt("SLOTMACHINE_SPACING_SLOTS", 0),
			BranchHeuristic: getEnv("SOLVER_BRANCH_HEURISTIC", "most-fractional"),
		},
		Persistence: PersistenceConfig{
			DSN: getEnv("SLOTMACHINE_PERSIST_DSN", ""),
		},
		Metrics: MetricsConfig{
			Address: getEnv("SLOTMACHINE_METRICS_ADDR", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
		},
	}

	if cfg.Solver.Threads < 1 {
		return nil, fmt.Errorf("SLOTMACHINE_THREADS must be at least 1, got %d", cfg.Solver.Threads)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
