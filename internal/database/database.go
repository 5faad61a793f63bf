// Package database opens the PostgreSQL pool and the SQLite handle the
// location store runs on.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
)

// Config holds PostgreSQL connection settings. URL, when set, takes
// precedence over the individual fields.
type Config struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// ConnectTimeout bounds how long Connect keeps retrying the first ping.
	ConnectTimeout time.Duration
}

// ConfigFromEnv creates a Config from DATABASE_URL or the DB_* variables.
func ConfigFromEnv() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	maxConns, _ := strconv.ParseInt(getEnvOrDefault("DB_MAX_CONNS", "10"), 10, 32)
	minConns, _ := strconv.ParseInt(getEnvOrDefault("DB_MIN_CONNS", "1"), 10, 32)
	lifetime, _ := time.ParseDuration(getEnvOrDefault("DB_CONN_MAX_LIFETIME", "30m"))
	idle, _ := time.ParseDuration(getEnvOrDefault("DB_CONN_MAX_IDLE_TIME", "5m"))
	connectTimeout, _ := time.ParseDuration(getEnvOrDefault("DB_CONNECT_TIMEOUT", "30s"))

	return Config{
		URL:             os.Getenv("DATABASE_URL"),
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("DB_USER", "nimbus"),
		Password:        getEnvOrDefault("DB_PASSWORD", "localdev"),
		Database:        getEnvOrDefault("DB_NAME", "nimbus"),
		SSLMode:         getEnvOrDefault("DB_SSL_MODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		ConnMaxLifetime: lifetime,
		ConnMaxIdleTime: idle,
		ConnectTimeout:  connectTimeout,
	}
}

// ConnectionString returns the PostgreSQL URL. Credentials are escaped.
func (c Config) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Connect creates a connection pool and waits for the database to answer,
// retrying with exponential backoff for up to ConnectTimeout.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.ConnectTimeout
	if policy.MaxElapsedTime <= 0 {
		policy.MaxElapsedTime = 30 * time.Second
	}
	if err := backoff.Retry(func() error { return pool.Ping(ctx) }, backoff.WithContext(policy, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// SQLiteConfig holds the SQLite database location.
type SQLiteConfig struct {
	// Path is a file path, a "file:" URI or ":memory:".
	Path string

	MaxOpenConns int
}

// SQLiteConfigFromEnv creates a SQLiteConfig from environment variables.
func SQLiteConfigFromEnv() SQLiteConfig {
	maxOpen, _ := strconv.Atoi(getEnvOrDefault("SQLITE_MAX_OPEN_CONNS", "1"))
	return SQLiteConfig{
		Path:         getEnvOrDefault("SQLITE_PATH", "data/nimbus.db"),
		MaxOpenConns: maxOpen,
	}
}

// DSN returns the go-sqlite3 data source name with foreign keys, a busy
// timeout and WAL journaling enabled.
func (c SQLiteConfig) DSN() string {
	if c.Path == ":memory:" {
		return c.Path
	}
	params := "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	if strings.HasPrefix(c.Path, "file:") {
		sep := "?"
		if strings.Contains(c.Path, "?") {
			sep = "&"
		}
		return c.Path + sep + params
	}
	return "file:" + c.Path + "?" + params
}

// OpenSQLite opens the SQLite database, creating its directory when needed.
// An in-memory database is limited to one connection, since every
// connection would otherwise see its own empty database.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*sql.DB, error) {
	if cfg.Path != ":memory:" && !strings.HasPrefix(cfg.Path, "file:") {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if cfg.Path == ":memory:" {
		cfg.MaxOpenConns = 1
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
