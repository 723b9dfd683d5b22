// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/db"
	"github.com/danielhkuo/pollvote/events"
	"github.com/danielhkuo/pollvote/store"
)

// Epoch is the start time of every FakeClock created by NewFakeClock.
var Epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: Epoch}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are ignored so
// the clock never goes backwards.
func (c *FakeClock) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Recorder is an events.Sink that keeps every event it receives. Set Err to
// make Emit fail.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

func (r *Recorder) Emit(ctx context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// SetupSQLiteStore opens a fresh sqlite database in a temp dir with the full
// schema and closes it when the test ends.
func SetupSQLiteStore(t *testing.T) *store.SQLStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "polls.db")
	conn, err := db.Open(context.Background(), db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	st := store.NewSQLStore(conn)
	t.Cleanup(func() { st.Close() })
	return st
}

// SetupPostgresStore connects to TEST_DATABASE_URL, dropping any previous
// tables first. Skips the test when the variable is unset.
func SetupPostgresStore(t *testing.T) *store.SQLStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, db.TypePostgres, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	_, err = conn.Exec(`
		DROP TABLE IF EXISTS poll_voter CASCADE;
		DROP TABLE IF EXISTS poll_option CASCADE;
		DROP TABLE IF EXISTS poll CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	st := store.NewSQLStore(conn)
	t.Cleanup(func() { st.Close() })
	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		StoreType: cliparse.StoreMemory,
		LogLevel:  "error",
		Output:    cliparse.OutputJSON,
		AMQPQueue: events.DefaultQueue,
	}
}
