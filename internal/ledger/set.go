package ledger

import (
	"path/filepath"
	"strconv"

	"snakewatch/internal/textnorm"
)

// Placeholder fills post-level fields on continuation rows in the saved
// ledger and commenter fields on no-comment rejection rows.
const Placeholder = "-"

// Ledger file names, kept stable so downstream spreadsheets keep working.
const (
	AcceptedFile = "filtered_post.csv"
	SavedFile    = "filtered_post_non_admin.csv"
	RejectedFile = "rejected_post.csv"
	RunLogFile   = "filter_log.csv"
	DoneFile     = "done_urls.csv"
	PendingFile  = "group_post_urls.csv"
)

var (
	detailHeaders   = []string{"post url", "date", "poster", "post text", "commenter", "comment text"}
	rejectedHeaders = []string{"post url", "commenter", "comment text"}
	runLogHeaders   = []string{"url", "comment scraped", "status"}
	doneHeaders     = []string{"url"}
)

// Set bundles every ledger one run touches. Accepted, Saved, and Rejected are
// the outcome ledgers consulted for deduplication; RunLog is audit-only and
// never read back; Done feeds the crawler's exclusion set.
type Set struct {
	Accepted *Ledger
	Saved    *Ledger
	Rejected *Ledger
	RunLog   *Ledger
	Done     *Ledger
}

// NewSet lays the ledgers out across the output, log, and state directories.
func NewSet(outputDir, logDir, stateDir string) *Set {
	return &Set{
		Accepted: New(filepath.Join(outputDir, AcceptedFile), detailHeaders),
		Saved:    New(filepath.Join(outputDir, SavedFile), detailHeaders),
		Rejected: New(filepath.Join(outputDir, RejectedFile), rejectedHeaders),
		RunLog:   New(filepath.Join(logDir, RunLogFile), runLogHeaders),
		Done:     New(filepath.Join(stateDir, DoneFile), doneHeaders),
	}
}

// Outcomes returns the ledgers that participate in deduplication.
func (s *Set) Outcomes() []*Ledger {
	return []*Ledger{s.Accepted, s.Saved, s.Rejected}
}

// AlreadyProcessed reports whether url has an outcome in any outcome ledger,
// and the file names that contain it.
func (s *Set) AlreadyProcessed(url string) (bool, []string, error) {
	var hits []string
	for _, l := range s.Outcomes() {
		present, err := l.Contains(url)
		if err != nil {
			return false, nil, err
		}
		if present {
			hits = append(hits, filepath.Base(l.Path()))
		}
	}
	return len(hits) > 0, hits, nil
}

// RecordOutcome appends one audit row to the run log. Skipped URLs are never
// recorded; callers only invoke this after an actual decision.
func (s *Set) RecordOutcome(url string, scrapedTotal int, status string) error {
	return s.RunLog.Append([]string{
		textnorm.CanonicalizeURL(url),
		strconv.Itoa(scrapedTotal),
		status,
	})
}

// MarkDone durably adds url to the done list unless already present.
func (s *Set) MarkDone(url string) error {
	canonical := textnorm.CanonicalizeURL(url)
	if canonical == "" {
		return nil
	}
	_, err := s.Done.AppendUnique(canonical, []string{canonical})
	return err
}
