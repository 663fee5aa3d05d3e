// Package store provides an opt-in SQLite cache for OpenF1 response bodies.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed response caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Load returns the stored body for key and when it was fetched.
func (c *Cache) Load(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var body []byte
	var fetchedNs int64
	err := c.db.QueryRowContext(ctx,
		"SELECT body, fetched_at_ns FROM responses WHERE cache_key = ?", key,
	).Scan(&body, &fetchedNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}
	return body, time.Unix(0, fetchedNs), true, nil
}

// Save stores a response body, replacing any earlier copy.
func (c *Cache) Save(ctx context.Context, key, endpoint string, body []byte, fetchedAt time.Time) error {
	_, err := c.db.ExecContext(ctx, `INSERT OR REPLACE INTO responses
		(cache_key, endpoint, body, size_bytes, fetched_at_ns)
		VALUES (?, ?, ?, ?, ?)`,
		key, endpoint, body, len(body), fetchedAt.UnixNano(),
	)
	return err
}

// Prune deletes responses fetched before cutoff and reports how many went.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM responses WHERE fetched_at_ns < ?", cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear deletes every stored response.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM responses")
	return err
}

// EndpointStats summarises the stored responses of one endpoint.
type EndpointStats struct {
	Endpoint string
	Entries  int
	Bytes    int64
	Oldest   time.Time
	Newest   time.Time
}

// Stats returns per-endpoint totals, largest first.
func (c *Cache) Stats(ctx context.Context) ([]EndpointStats, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT endpoint, COUNT(*), SUM(size_bytes),
		MIN(fetched_at_ns), MAX(fetched_at_ns)
		FROM responses GROUP BY endpoint ORDER BY SUM(size_bytes) DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []EndpointStats
	for rows.Next() {
		var s EndpointStats
		var oldest, newest int64
		if err := rows.Scan(&s.Endpoint, &s.Entries, &s.Bytes, &oldest, &newest); err != nil {
			return nil, err
		}
		s.Oldest = time.Unix(0, oldest)
		s.Newest = time.Unix(0, newest)
		out = append(out, s)
	}
	return out, rows.Err()
}
