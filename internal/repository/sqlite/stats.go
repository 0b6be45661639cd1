package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"
)

// Stats counts executed SQL statements by verb. Tests use it to assert
// write amplification: linking one edge on an unordered owning
// collection must cost exactly one insert and zero deletes.
type Stats struct {
	Selects int
	Inserts int
	Deletes int
	Updates int
}

type statCounter struct {
	mu    sync.Mutex
	stats Stats
}

func (c *statCounter) record(query string) {
	verb := strings.ToLower(strings.Fields(strings.TrimSpace(query))[0])
	c.mu.Lock()
	defer c.mu.Unlock()
	switch verb {
	case "select":
		c.stats.Selects++
	case "insert":
		c.stats.Inserts++
	case "delete":
		c.stats.Deletes++
	case "update":
		c.stats.Updates++
	}
}

// Stats returns the statement counts accumulated since the last reset.
func (s *Store) Stats() Stats {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	return s.stats.stats
}

// ResetStats zeroes the statement counters.
func (s *Store) ResetStats() {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	s.stats.stats = Stats{}
}

// Counted wrappers around database/sql. All store SQL goes through
// these so the statement log stays complete.

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.stats.record(query)
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.stats.record(query)
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	s.stats.record(query)
	return s.db.QueryRowContext(ctx, query, args...)
}
