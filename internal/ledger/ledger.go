package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"snakewatch/internal/services"
	"snakewatch/internal/textnorm"
)

// Ledger is one append-only CSV file with a fixed header.
type Ledger struct {
	path    string
	headers []string
}

// New describes a ledger at path with the given header row. The file is not
// touched until the first append.
func New(path string, headers []string) *Ledger {
	cp := make([]string, len(headers))
	copy(cp, headers)
	return &Ledger{path: path, headers: cp}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Headers returns a copy of the header row.
func (l *Ledger) Headers() []string {
	cp := make([]string, len(l.headers))
	copy(cp, l.headers)
	return cp
}

// Contains reports whether url (after canonicalization) appears under the
// identity column. A missing or empty file is not a match; any other read
// failure is a ledger error.
func (l *Ledger) Contains(url string) (bool, error) {
	target := textnorm.CanonicalizeURL(url)
	if target == "" {
		return false, nil
	}

	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, services.Wrap(services.ErrLedger, "ledger", "open", l.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, services.Wrap(services.ErrLedger, "ledger", "read header", l.path, err)
	}
	col, ok := FindIdentityColumn(header)
	if !ok {
		return false, nil
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, services.Wrap(services.ErrLedger, "ledger", "read row", l.path, err)
		}
		if col >= len(record) {
			continue
		}
		if v := textnorm.CanonicalizeURL(record[col]); v != "" && v == target {
			return true, nil
		}
	}
}

// Identities returns every canonical identity-column value in file order.
// A missing or empty file yields nil.
func (l *Ledger) Identities() ([]string, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrLedger, "ledger", "open", l.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrLedger, "ledger", "read header", l.path, err)
	}
	col, ok := FindIdentityColumn(header)
	if !ok {
		return nil, nil
	}

	var urls []string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return urls, nil
			}
			return nil, services.Wrap(services.ErrLedger, "ledger", "read row", l.path, err)
		}
		if col >= len(record) {
			continue
		}
		// Placeholder cells in continuation rows are not identities.
		v := textnorm.CanonicalizeURL(record[col])
		if v == "" || !strings.Contains(v, "://") {
			continue
		}
		urls = append(urls, v)
	}
}

// Count returns the number of data rows, excluding the header.
func (l *Ledger) Count() (int, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, services.Wrap(services.ErrLedger, "ledger", "open", l.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	count := 0
	for {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, services.Wrap(services.ErrLedger, "ledger", "read row", l.path, err)
		}
		count++
	}
	if count > 0 {
		count--
	}
	return count, nil
}

// Append durably writes rows, creating the header first when the file is new
// or empty. Existing rows are never rewritten or reordered.
func (l *Ledger) Append(rows ...[]string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := l.ensureHeader(); err != nil {
		return err
	}
	return appendDurable(l.path, rows)
}

// AppendUnique re-checks membership for identityURL in this specific ledger
// and appends only when absent, guarding against two processes racing between
// their own contains check and append. Reports whether a write happened.
func (l *Ledger) AppendUnique(identityURL string, rows ...[]string) (bool, error) {
	present, err := l.Contains(identityURL)
	if err != nil {
		return false, err
	}
	if present {
		return false, nil
	}
	if err := l.Append(rows...); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) ensureHeader() error {
	info, err := os.Stat(l.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrLedger, "ledger", "stat", l.path, err)
	}
	return writeDurable(l.path, [][]string{l.headers})
}

// appendDurable opens for append, writes, flushes, and forces an OS-level
// sync before closing.
func appendDurable(path string, rows [][]string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return services.Wrap(services.ErrLedger, "ledger", "open append", path, err)
	}
	if err := writeRowsAndSync(file, rows); err != nil {
		_ = file.Close()
		return services.Wrap(services.ErrLedger, "ledger", "append", path, err)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrLedger, "ledger", "close", path, err)
	}
	return nil
}

// writeDurable truncates and rewrites path with rows, then syncs.
func writeDurable(path string, rows [][]string) error {
	file, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return services.Wrap(services.ErrLedger, "ledger", "open write", path, err)
	}
	if err := writeRowsAndSync(file, rows); err != nil {
		_ = file.Close()
		return services.Wrap(services.ErrLedger, "ledger", "write", path, err)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrLedger, "ledger", "close", path, err)
	}
	return nil
}

func writeRowsAndSync(file *os.File, rows [][]string) error {
	writer := csv.NewWriter(file)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}
