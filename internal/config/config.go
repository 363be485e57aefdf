package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AuthHeader   = "header"
	AuthSupabase = "supabase"

	ProceduresLocal    = "local"
	ProceduresSupabase = "supabase"
)

type Config struct {
	// HTTP Server
	Port        string
	CORSOrigins []string

	// Database
	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	// Remote store integration
	AuthMode    string
	Procedures  string
	SupabaseURL string
	SupabaseKey string

	// Read cache for catalog queries
	CacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadEnv reads an optional .env file. Returns false when none was found.
func LoadEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		DBDriver:    getEnv("DB_DRIVER", DriverPostgres),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=household_budget port=5432 sslmode=disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/budget.db"),

		AuthMode:    getEnv("AUTH_MODE", AuthHeader),
		Procedures:  getEnv("PROCEDURES", ProceduresLocal),
		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),

		CacheTTL: getEnvDuration("CACHE_TTL", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL cannot be empty when using the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errors = append(errors, "SQLITE_PATH cannot be empty when using the sqlite driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid db driver '%s': must be one of [%s %s]", c.DBDriver, DriverPostgres, DriverSQLite))
	}

	if c.AuthMode != AuthHeader && c.AuthMode != AuthSupabase {
		errors = append(errors, fmt.Sprintf("invalid auth mode '%s': must be one of [%s %s]", c.AuthMode, AuthHeader, AuthSupabase))
	}
	if c.Procedures != ProceduresLocal && c.Procedures != ProceduresSupabase {
		errors = append(errors, fmt.Sprintf("invalid procedures '%s': must be one of [%s %s]", c.Procedures, ProceduresLocal, ProceduresSupabase))
	}

	if c.UsesSupabase() {
		if c.SupabaseURL == "" {
			errors = append(errors, "SUPABASE_URL is required when auth mode or procedures is supabase")
		}
		if c.SupabaseKey == "" {
			errors = append(errors, "SUPABASE_KEY is required when auth mode or procedures is supabase")
		}
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must not be negative", c.CacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// UsesSupabase reports whether any component talks to Supabase.
func (c *Config) UsesSupabase() bool {
	return c.AuthMode == AuthSupabase || c.Procedures == ProceduresSupabase
}

// EnsureSQLiteDir creates the directory holding the sqlite file.
func (c *Config) EnsureSQLiteDir() error {
	dir := filepath.Dir(c.SQLitePath)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory %s: %w", dir, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
