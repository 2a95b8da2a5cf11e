package classify

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"snakewatch/internal/textnorm"
)

// Roster is the set of lower-cased administrator display names, loaded once
// per run and read-only afterwards.
type Roster map[string]struct{}

// LoadRoster reads one display name per line, ignoring blank lines. A missing
// file yields an empty roster; any other error surfaces.
func LoadRoster(path string) (Roster, error) {
	roster := make(Roster)
	if strings.TrimSpace(path) == "" {
		return roster, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return roster, nil
		}
		return nil, fmt.Errorf("open staff roster: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.ToLower(textnorm.Normalize(scanner.Text()))
		if name != "" {
			roster[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read staff roster: %w", err)
	}
	return roster, nil
}

// Contains reports roster membership for a raw display name.
func (r Roster) Contains(name string) bool {
	if len(r) == 0 {
		return false
	}
	normalized := strings.ToLower(textnorm.Normalize(name))
	if normalized == "" {
		return false
	}
	_, ok := r[normalized]
	return ok
}
