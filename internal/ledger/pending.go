package ledger

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"snakewatch/internal/services"
	"snakewatch/internal/textnorm"
)

var pendingHeaders = []string{"post_url"}

// Pending is the work-list of candidate URLs awaiting classification. New
// candidates are appended durably one at a time; removal rewrites the file
// wholesale. Callers are expected to hold the pending lock, since this file
// assumes a single writer at a time.
type Pending struct {
	ledger *Ledger
}

// NewPending returns the pending work-list at path.
func NewPending(path string) *Pending {
	return &Pending{ledger: New(path, pendingHeaders)}
}

// Path returns the backing file path.
func (p *Pending) Path() string {
	return p.ledger.Path()
}

// Append durably adds one candidate URL.
func (p *Pending) Append(url string) error {
	canonical := textnorm.CanonicalizeURL(url)
	if canonical == "" {
		return nil
	}
	return p.ledger.Append([]string{canonical})
}

// Contains reports membership, canonicalized.
func (p *Pending) Contains(url string) (bool, error) {
	return p.ledger.Contains(url)
}

// Snapshot is a loaded copy of the pending file, preserving whatever column
// layout the input had so removals do not destroy extra columns.
type Snapshot struct {
	hasHeader bool
	headers   []string
	col       int
	rows      [][]string
}

// URLs returns the raw identity-column values in file order.
func (s *Snapshot) URLs() []string {
	out := make([]string, 0, len(s.rows))
	for _, row := range s.rows {
		if s.col < len(row) {
			if v := strings.TrimSpace(row[s.col]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// Len returns the number of data rows.
func (s *Snapshot) Len() int {
	return len(s.rows)
}

// Load reads the whole pending file. A missing or empty file yields an empty
// snapshot. Files without a header row are accepted: the first row counts as
// data when any of its cells looks like a URL.
func (p *Pending) Load() (*Snapshot, error) {
	file, err := os.Open(p.ledger.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{hasHeader: true, headers: pendingHeaders, col: 0}, nil
		}
		return nil, services.Wrap(services.ErrLedger, "pending", "open", p.ledger.Path(), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, services.Wrap(services.ErrLedger, "pending", "read", p.ledger.Path(), err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return &Snapshot{hasHeader: true, headers: pendingHeaders, col: 0}, nil
	}

	snapshot := &Snapshot{hasHeader: !rowLooksLikeData(records[0])}
	if snapshot.hasHeader {
		snapshot.headers = records[0]
		records = records[1:]
		if col, ok := FindIdentityColumn(snapshot.headers); ok {
			snapshot.col = col
		}
	} else {
		snapshot.headers = pendingHeaders
	}
	snapshot.rows = records
	return snapshot, nil
}

// Remove deletes every row whose identity cell canonicalizes to url, then
// rewrites the file wholesale and durably. Reports whether anything changed.
func (p *Pending) Remove(url string) (bool, error) {
	target := textnorm.CanonicalizeURL(url)
	if target == "" {
		return false, nil
	}
	snapshot, err := p.Load()
	if err != nil {
		return false, err
	}

	kept := snapshot.rows[:0:0]
	for _, row := range snapshot.rows {
		if snapshot.col < len(row) && textnorm.CanonicalizeURL(row[snapshot.col]) == target {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == len(snapshot.rows) {
		return false, nil
	}

	out := make([][]string, 0, len(kept)+1)
	if snapshot.hasHeader {
		out = append(out, snapshot.headers)
	}
	out = append(out, kept...)
	if err := rewriteDurable(p.ledger.Path(), out); err != nil {
		return false, err
	}
	return true, nil
}

// rewriteDurable replaces path atomically: write a temp file in the same
// directory, sync it, then rename over the original.
func rewriteDurable(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return services.Wrap(services.ErrLedger, "pending", "create temp", path, err)
	}
	tmpPath := tmp.Name()
	if err := writeRowsAndSync(tmp, rows); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrLedger, "pending", "write temp", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrLedger, "pending", "close temp", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrLedger, "pending", "replace", path, err)
	}
	return nil
}

// rowLooksLikeData reports whether a first CSV row is data rather than a
// header: any cell that resembles a link means there is no header row.
func rowLooksLikeData(row []string) bool {
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if strings.Contains(cell, "://") || strings.HasPrefix(cell, "/") {
			return true
		}
	}
	return false
}
