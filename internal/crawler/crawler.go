package crawler

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/sethvargo/go-retry"

	"snakewatch/internal/services"
	"snakewatch/internal/textnorm"
)

// Config holds the convergence knobs. Zero values are replaced by the
// defaults below, which match long-running production use.
type Config struct {
	GroupURL      string
	UseMobile     bool
	Chronological bool

	TargetNew    int
	WarmupRounds int
	MaxRounds    int
	StallLimit   int

	Pause        time.Duration
	IdleLimit    time.Duration
	PollInterval time.Duration
	NudgeTries   int
	NudgePause   time.Duration

	PruneKeepLast           int
	MaxArticlesBeforeReload int
	ReloadEveryRounds       int

	SessionRetries      int
	SessionRetryBackoff time.Duration
}

// Defaults for any zero-valued knob.
const (
	DefaultTargetNew               = 5000
	DefaultMaxRounds               = 6000
	DefaultStallLimit              = 8
	DefaultPause                   = time.Second
	DefaultIdleLimit               = 18 * time.Second
	DefaultPollInterval            = 500 * time.Millisecond
	DefaultNudgeTries              = 16
	DefaultNudgePause              = 600 * time.Millisecond
	DefaultPruneKeepLast           = 160
	DefaultMaxArticlesBeforeReload = 900
	DefaultReloadEveryRounds       = 1000
	DefaultSessionRetries          = 3
	DefaultSessionRetryBackoff     = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.TargetNew <= 0 {
		c.TargetNew = DefaultTargetNew
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = DefaultMaxRounds
	}
	if c.StallLimit <= 0 {
		c.StallLimit = DefaultStallLimit
	}
	if c.Pause <= 0 {
		c.Pause = DefaultPause
	}
	if c.IdleLimit <= 0 {
		c.IdleLimit = DefaultIdleLimit
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.NudgeTries <= 0 {
		c.NudgeTries = DefaultNudgeTries
	}
	if c.NudgePause <= 0 {
		c.NudgePause = DefaultNudgePause
	}
	if c.PruneKeepLast <= 0 {
		c.PruneKeepLast = DefaultPruneKeepLast
	}
	if c.MaxArticlesBeforeReload <= 0 {
		c.MaxArticlesBeforeReload = DefaultMaxArticlesBeforeReload
	}
	if c.ReloadEveryRounds <= 0 {
		c.ReloadEveryRounds = DefaultReloadEveryRounds
	}
	if c.SessionRetries <= 0 {
		c.SessionRetries = DefaultSessionRetries
	}
	if c.SessionRetryBackoff <= 0 {
		c.SessionRetryBackoff = DefaultSessionRetryBackoff
	}
	return c
}

// StartURL builds the feed URL the crawler navigates to: mobile host when
// configured, with chronological ordering forced.
func (c Config) StartURL() string {
	url := c.GroupURL
	if c.UseMobile {
		url = textnorm.ToMobile(url)
	}
	if c.Chronological {
		url = textnorm.ForceChronological(url)
	}
	return url
}

// Reason explains why a crawl stopped.
type Reason string

const (
	// ReasonTarget means the configured count of new URLs was collected.
	ReasonTarget Reason = "target reached"
	// ReasonExhausted means the stall limit fired: the feed stopped growing.
	ReasonExhausted Reason = "feed exhausted"
	// ReasonRoundCap means the hard round cap fired first.
	ReasonRoundCap Reason = "round cap"
)

// Stats summarizes one crawl run.
type Stats struct {
	NewCollected int
	Rounds       int
	BaselineSize int
	Reloads      int
	Recoveries   int
	Reason       Reason
}

// EmitFunc receives each newly discovered canonical URL. It must persist the
// URL durably before returning; an error aborts the run.
type EmitFunc func(url string) error

// Option customizes a Crawler.
type Option func(*Crawler)

// WithClock replaces the wall clock, for tests.
func WithClock(clock Clock) Option {
	return func(c *Crawler) { c.clock = clock }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// WithSeenStore attaches a persistent seen-set. Without one the seen-set is
// in-memory only and lasts a single run.
func WithSeenStore(store *SeenStore) Option {
	return func(c *Crawler) { c.store = store }
}

// Crawler runs the convergence loop against feed sessions produced by a
// SessionFactory.
type Crawler struct {
	cfg     Config
	factory SessionFactory
	emit    EmitFunc
	clock   Clock
	logger  *slog.Logger
	store   *SeenStore

	view FeedView
	seen map[string]struct{}
}

// New builds a crawler. Call Exclude before Run to seed the seen-set with
// URLs that must never be emitted, typically the pending work-list union the
// done list.
func New(cfg Config, factory SessionFactory, emit EmitFunc, opts ...Option) (*Crawler, error) {
	if factory == nil {
		return nil, services.Wrap(services.ErrValidation, "crawler", "configure", "nil session factory", nil)
	}
	if emit == nil {
		return nil, services.Wrap(services.ErrValidation, "crawler", "configure", "nil emit function", nil)
	}
	c := &Crawler{
		cfg:     cfg.withDefaults(),
		factory: factory,
		emit:    emit,
		clock:   systemClock{},
		logger:  slog.New(slog.DiscardHandler),
		seen:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Exclude seeds the seen-set so the given URLs are never emitted.
func (c *Crawler) Exclude(urls []string) {
	for _, url := range urls {
		if canonical := textnorm.CanonicalizeURL(url); canonical != "" {
			c.seen[canonical] = struct{}{}
		}
	}
}

// Run executes one crawl to completion.
func (c *Crawler) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if c.store != nil {
		persisted, err := c.store.All(ctx)
		if err != nil {
			return stats, services.Wrap(services.ErrSession, "crawler", "load seen store", "", err)
		}
		for _, url := range persisted {
			c.seen[url] = struct{}{}
		}
	}

	if err := c.replaceSession(ctx, &stats); err != nil {
		return stats, err
	}
	defer func() {
		if c.view != nil {
			_ = c.view.Close()
		}
	}()

	if err := c.warmup(ctx); err != nil {
		return stats, err
	}

	baseline, err := c.snapshotCanonical(ctx)
	if err != nil {
		if err := c.recover(ctx, &stats); err != nil {
			return stats, err
		}
		if baseline, err = c.snapshotCanonical(ctx); err != nil {
			return stats, services.Wrap(services.ErrSession, "crawler", "baseline snapshot", "", err)
		}
	}
	for url := range baseline {
		c.seen[url] = struct{}{}
	}
	stats.BaselineSize = len(baseline)
	c.logger.Info("baseline captured", "urls", stats.BaselineSize)

	stalls := 0
	lastReload := -c.cfg.ReloadEveryRounds

	for round := 0; round < c.cfg.MaxRounds; round++ {
		stats.Rounds = round + 1
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		counts, err := c.view.Counts(ctx)
		if err != nil {
			counts = Counts{}
		}
		if round-lastReload >= c.cfg.ReloadEveryRounds || counts.Articles >= c.cfg.MaxArticlesBeforeReload {
			c.logger.Info("soft reload", "round", round+1, "articles", counts.Articles)
			if err := c.softReload(ctx); err != nil {
				if err := c.recover(ctx, &stats); err != nil {
					return stats, err
				}
			}
			lastReload = round
			stats.Reloads++
		}

		// Bound the view's memory; a failed prune is not worth a restart.
		_ = c.view.Prune(ctx, c.cfg.PruneKeepLast)

		added, err := c.collect(ctx, &stats)
		if err != nil {
			if services.IsFatal(err) {
				return stats, err
			}
			if err := c.recover(ctx, &stats); err != nil {
				return stats, err
			}
			lastReload = round
			if added, err = c.collect(ctx, &stats); err != nil {
				return stats, err
			}
		}

		if stats.NewCollected >= c.cfg.TargetNew {
			stats.Reason = ReasonTarget
			c.logger.Info("target reached", "collected", stats.NewCollected)
			return stats, nil
		}

		if err := c.view.ScrollToBottom(ctx); err != nil {
			if err := c.recover(ctx, &stats); err != nil {
				return stats, err
			}
		}

		sawNew, err := c.waitForGrowth(ctx)
		if err != nil {
			return stats, err
		}
		if !sawNew {
			if sawNew, err = c.nudge(ctx); err != nil {
				return stats, err
			}
		}

		if added == 0 && !sawNew {
			stalls++
			c.logger.Info("no growth", "stall", stalls, "limit", c.cfg.StallLimit)
			if stalls >= c.cfg.StallLimit {
				stats.Reason = ReasonExhausted
				return stats, nil
			}
		} else {
			stalls = 0
		}

		if err := c.clock.Sleep(ctx, c.cfg.Pause); err != nil {
			return stats, err
		}
	}

	stats.Reason = ReasonRoundCap
	return stats, nil
}

// warmup scrolls without collecting so the initial rendering settles before
// the baseline is captured.
func (c *Crawler) warmup(ctx context.Context) error {
	if c.cfg.WarmupRounds <= 0 {
		return nil
	}
	c.logger.Info("warm-up", "rounds", c.cfg.WarmupRounds)
	for i := 0; i < c.cfg.WarmupRounds; i++ {
		if err := c.view.ScrollToBottom(ctx); err != nil {
			return services.Wrap(services.ErrSession, "crawler", "warm-up scroll", "", err)
		}
		sawNew, err := c.waitForGrowth(ctx)
		if err != nil {
			return err
		}
		if !sawNew {
			if _, err := c.nudge(ctx); err != nil {
				return err
			}
		}
		if err := c.clock.Sleep(ctx, c.cfg.Pause); err != nil {
			return err
		}
	}
	return nil
}

// collect snapshots the view and emits every URL not yet seen, in sorted
// order, adding each to the in-memory and persisted seen-sets. Returns the
// number of new URLs.
func (c *Crawler) collect(ctx context.Context, stats *Stats) (int, error) {
	discovered, err := c.snapshotCanonical(ctx)
	if err != nil {
		return 0, err
	}
	fresh := make([]string, 0, len(discovered))
	for url := range discovered {
		if _, ok := c.seen[url]; !ok {
			fresh = append(fresh, url)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	sort.Strings(fresh)
	for _, url := range fresh {
		if err := c.emit(url); err != nil {
			return 0, err
		}
		c.seen[url] = struct{}{}
		if c.store != nil {
			if _, err := c.store.Add(ctx, url); err != nil {
				return 0, services.Wrap(services.ErrSession, "crawler", "persist seen url", url, err)
			}
		}
		stats.NewCollected++
	}
	c.logger.Info("collected", "new", len(fresh), "total", stats.NewCollected, "target", c.cfg.TargetNew)
	return len(fresh), nil
}

// snapshotCanonical reads the rendered hrefs and reduces them to the set of
// canonical post URLs.
func (c *Crawler) snapshotCanonical(ctx context.Context) (map[string]struct{}, error) {
	hrefs, err := c.view.SnapshotHrefs(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(hrefs))
	for _, href := range hrefs {
		if href == "" || !textnorm.LooksLikePost(href) {
			continue
		}
		canonical := textnorm.CanonicalizeURL(textnorm.AbsolutizeHref(href, c.cfg.UseMobile))
		if canonical != "" {
			out[canonical] = struct{}{}
		}
	}
	return out, nil
}

// waitForGrowth polls the added-item counter at the configured interval until
// growth is observed or the idle limit passes.
func (c *Crawler) waitForGrowth(ctx context.Context) (bool, error) {
	deadline := c.clock.Now().Add(c.cfg.IdleLimit)
	for c.clock.Now().Before(deadline) {
		if err := c.clock.Sleep(ctx, c.cfg.PollInterval); err != nil {
			return false, err
		}
		counts, err := c.view.Counts(ctx)
		if err != nil {
			continue
		}
		if counts.Added > 0 {
			_ = c.view.ResetAdded(ctx)
			return true, nil
		}
	}
	return false, nil
}

// nudge issues small load-more actions after an idle window, re-checking for
// growth after each. A failed nudge downgrades to a soft reload.
func (c *Crawler) nudge(ctx context.Context) (bool, error) {
	for i := 0; i < c.cfg.NudgeTries; i++ {
		if err := c.view.Nudge(ctx); err != nil {
			c.logger.Warn("nudge failed, reloading", "error", err)
			_ = c.softReload(ctx)
			return false, nil
		}
		if err := c.clock.Sleep(ctx, c.cfg.NudgePause); err != nil {
			return false, err
		}
		counts, err := c.view.Counts(ctx)
		if err != nil {
			continue
		}
		if counts.Added > 0 {
			_ = c.view.ResetAdded(ctx)
			return true, nil
		}
	}
	return false, nil
}

// softReload re-navigates the existing session and re-arms observation. The
// seen-set is untouched, so nothing already collected can resurface as new.
func (c *Crawler) softReload(ctx context.Context) error {
	if err := c.view.Navigate(ctx, c.cfg.StartURL()); err != nil {
		return err
	}
	if err := c.view.ArmObserver(ctx); err != nil {
		return err
	}
	return c.view.ResetAdded(ctx)
}

// recover replaces a dead session. The stall counter is owned by the main
// loop and deliberately not touched here.
func (c *Crawler) recover(ctx context.Context, stats *Stats) error {
	c.logger.Warn("session unusable, replacing")
	stats.Recoveries++
	return c.replaceSession(ctx, stats)
}

// replaceSession closes the current view, builds a fresh one with backoff,
// navigates it to the feed, and re-arms observation.
func (c *Crawler) replaceSession(ctx context.Context, stats *Stats) error {
	if c.view != nil {
		_ = c.view.Close()
		c.view = nil
	}
	backoff := retry.WithMaxRetries(uint64(c.cfg.SessionRetries), retry.NewExponential(c.cfg.SessionRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		view, err := c.factory(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := view.Navigate(ctx, c.cfg.StartURL()); err != nil {
			_ = view.Close()
			return retry.RetryableError(err)
		}
		if err := view.ArmObserver(ctx); err != nil {
			_ = view.Close()
			return retry.RetryableError(err)
		}
		c.view = view
		return nil
	})
	if err != nil {
		return services.Wrap(services.ErrSession, "crawler", "replace session", "", err)
	}
	return c.view.ResetAdded(ctx)
}
