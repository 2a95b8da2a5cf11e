package crawler

import "context"

// Counts is one reading of the feed view's growth counters. Articles is the
// number of rendered feed items; Added accumulates insertions since the last
// reset.
type Counts struct {
	Articles int
	Added    int
}

// FeedView drives one live rendering of the group feed. Implementations wrap
// a real browser session; tests script one in memory. Any returned error
// means the session may be unusable and the crawler will replace it.
type FeedView interface {
	// Navigate loads url and waits for the feed to settle.
	Navigate(ctx context.Context, url string) error
	// ArmObserver installs the insertion observer that feeds Counts.Added.
	ArmObserver(ctx context.Context) error
	// Counts reads the current growth counters.
	Counts(ctx context.Context) (Counts, error)
	// ResetAdded zeroes the added-item counter.
	ResetAdded(ctx context.Context) error
	// SnapshotHrefs returns every candidate href currently rendered.
	SnapshotHrefs(ctx context.Context) ([]string, error)
	// ScrollToBottom triggers one full load-more action.
	ScrollToBottom(ctx context.Context) error
	// Nudge triggers a smaller load-more action.
	Nudge(ctx context.Context) error
	// Prune drops all but the newest keepLast rendered items.
	Prune(ctx context.Context, keepLast int) error
	// Close releases the session.
	Close() error
}

// SessionFactory produces a fresh authenticated FeedView. The crawler calls
// it at startup and again whenever the current session becomes unusable.
type SessionFactory func(ctx context.Context) (FeedView, error)
