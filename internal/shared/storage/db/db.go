package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"offertanalys/internal/shared/telemetry"
)

// Options sizes the pool and controls the startup ping.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// PingAttempts > 1 retries the startup ping, for databases that come up
	// alongside the process.
	PingAttempts int
	PingBackoff  time.Duration
}

var openDB = sql.Open

// DefaultServerOptions suits the API, where batch analysis and comparisons
// hold connections only between model calls.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
		PingAttempts:    5,
		PingBackoff:     time.Second,
	}
}

// DefaultWorkerOptions suits the sweep worker, which runs one batch at a time.
func DefaultWorkerOptions() Options {
	return Options{
		MaxOpenConns:    3,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     5 * time.Second,
		PingAttempts:    10,
		PingBackoff:     2 * time.Second,
	}
}

func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
		PingAttempts: 1,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 10
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = min(5, o.MaxOpenConns)
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = time.Hour
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	if o.PingAttempts <= 0 {
		o.PingAttempts = 1
	}
	return o
}

// OptionsFromEnv applies DB_* overrides on top of defaults. Unparseable
// values are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	o := defaults
	envOverride("DB_MAX_OPEN_CONNS", strconv.Atoi, &o.MaxOpenConns)
	envOverride("DB_MAX_IDLE_CONNS", strconv.Atoi, &o.MaxIdleConns)
	envOverride("DB_CONN_MAX_LIFETIME", time.ParseDuration, &o.ConnMaxLifetime)
	envOverride("DB_CONN_MAX_IDLE_TIME", time.ParseDuration, &o.ConnMaxIdleTime)
	envOverride("DB_PING_TIMEOUT", time.ParseDuration, &o.PingTimeout)
	envOverride("DB_PING_ATTEMPTS", strconv.Atoi, &o.PingAttempts)
	return o
}

func envOverride[T any](key string, parse func(string) (T, error), dst *T) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := parse(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "value": raw})
		return
	}
	*dst = v
}

// Connect opens a pgx-backed *sql.DB and pings it, retrying as opts allow.
// The pool is meant to be shared for the life of the process.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	opts = opts.withDefaults()

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	if err := ping(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}

	stats := db.Stats()
	telemetry.Info("db.init", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, opts Options) error {
	var err error
	for attempt := 1; attempt <= opts.PingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == opts.PingAttempts {
			break
		}
		telemetry.Warn("db.ping.retry", map[string]any{"attempt": attempt, "error": err})
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(opts.PingBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("ping database: %w", err)
}
