package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

// flakyDriver fails the first failPings pings and then behaves.
type flakyDriver struct {
	failPings int32
	pings     atomic.Int32
}

func (d *flakyDriver) Open(name string) (driver.Conn, error) { return &flakyConn{d: d}, nil }

type flakyConn struct{ d *flakyDriver }

func (c *flakyConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("not supported")
}
func (c *flakyConn) Close() error              { return nil }
func (c *flakyConn) Begin() (driver.Tx, error) { return nil, errors.New("not supported") }
func (c *flakyConn) Ping(ctx context.Context) error {
	if c.d.pings.Add(1) <= c.d.failPings {
		return driver.ErrBadConn
	}
	return nil
}

var driverSeq atomic.Int32

// useDriver routes openDB to a freshly registered flakyDriver.
func useDriver(t *testing.T, failPings int32) *flakyDriver {
	t.Helper()
	d := &flakyDriver{failPings: failPings}
	name := fmt.Sprintf("flaky%d", driverSeq.Add(1))
	sql.Register(name, d)

	prev := openDB
	openDB = func(_, dsn string) (*sql.DB, error) { return sql.Open(name, dsn) }
	t.Cleanup(func() { openDB = prev })
	return d
}

func TestConnectAppliesPoolOptions(t *testing.T) {
	useDriver(t, 0)
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")

	opts := OptionsFromEnv(DefaultServerOptions())
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected 45s idle time, got %s", opts.ConnMaxIdleTime)
	}
	db, err := Connect(context.Background(), "postgres://offertanalys", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
}

func TestConnectRetriesPing(t *testing.T) {
	d := useDriver(t, 2)
	opts := Options{PingAttempts: 3, PingBackoff: time.Millisecond}

	db, err := Connect(context.Background(), "postgres://offertanalys", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if got := d.pings.Load(); got != 3 {
		t.Fatalf("expected 3 pings, got %d", got)
	}
}

func TestConnectGivesUpAfterAttempts(t *testing.T) {
	d := useDriver(t, 100)
	opts := Options{PingAttempts: 2, PingBackoff: time.Millisecond}

	_, err := Connect(context.Background(), "postgres://offertanalys", opts)
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected ErrBadConn, got %v", err)
	}
	if got := d.pings.Load(); got != 2 {
		t.Fatalf("expected 2 pings, got %d", got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}

func TestConnectSurfacesOpenError(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) { return nil, driver.ErrBadConn }
	defer func() { openDB = prev }()

	if _, err := Connect(context.Background(), "postgres://x", DefaultWorkerOptions()); !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("expected wrapped ErrBadConn, got %v", err)
	}
}

func TestOptionsFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	defaults := DefaultWorkerOptions()
	if opts := OptionsFromEnv(defaults); opts != defaults {
		t.Fatalf("expected defaults to survive invalid env, got %+v", opts)
	}
}

func TestWithDefaults(t *testing.T) {
	o := Options{MaxOpenConns: 2}.withDefaults()
	if o.MaxIdleConns != 2 || o.PingAttempts != 1 || o.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", o)
	}
}
