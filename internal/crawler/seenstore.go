package crawler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"snakewatch/internal/textnorm"
)

// SeenStore persists the set of canonical URLs the crawler has ever emitted.
// It survives view reloads, session replacements, and process restarts, so a
// reload can never re-introduce a collected URL as new.
type SeenStore struct {
	db   *sql.DB
	path string
}

// OpenSeenStore opens or creates the store at dbPath.
func OpenSeenStore(dbPath string) (*SeenStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open seen store: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	schema := `CREATE TABLE IF NOT EXISTS seen_urls (
		url TEXT PRIMARY KEY,
		first_seen TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create seen_urls table: %w", err)
	}
	return &SeenStore{db: db, path: dbPath}, nil
}

// Add records url as seen, canonicalized. Reports whether the URL was new.
func (s *SeenStore) Add(ctx context.Context, url string) (bool, error) {
	canonical := textnorm.CanonicalizeURL(url)
	if canonical == "" {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO seen_urls (url, first_seen) VALUES (?, ?)",
		canonical, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("record seen url: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Contains reports whether url was already seen.
func (s *SeenStore) Contains(ctx context.Context, url string) (bool, error) {
	canonical := textnorm.CanonicalizeURL(url)
	if canonical == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM seen_urls WHERE url = ?", canonical).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query seen url: %w", err)
	}
	return true, nil
}

// All returns every seen URL, oldest first.
func (s *SeenStore) All(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT url FROM seen_urls ORDER BY first_seen, url")
	if err != nil {
		return nil, fmt.Errorf("list seen urls: %w", err)
	}
	defer rows.Close()
	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan seen url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen urls: %w", err)
	}
	return urls, nil
}

// Count returns the number of seen URLs.
func (s *SeenStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seen_urls").Scan(&n); err != nil {
		return 0, fmt.Errorf("count seen urls: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SeenStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
