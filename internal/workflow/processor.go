package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"snakewatch/internal/classify"
	"snakewatch/internal/fetch"
	"snakewatch/internal/ledger"
	"snakewatch/internal/services"
	"snakewatch/internal/textnorm"
)

// State of one candidate inside the processor.
type State string

const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateClassifying State = "classifying"
	StateCommitted   State = "committed"
	StateSkipped     State = "skipped"
)

// CommentsFetcher retrieves the comment section of one post.
type CommentsFetcher interface {
	Fetch(ctx context.Context, url string, onEarly func(fetch.CommentsResult)) (fetch.CommentsResult, error)
}

// DetailsFetcher retrieves poster, body, and date for one post.
type DetailsFetcher interface {
	Fetch(ctx context.Context, url string) (classify.PostDetails, error)
}

// Deps wires a Processor. Ledgers, Pending, and Comments are required;
// Details may be nil only when no candidate can be accepted or saved, so in
// practice it is required too.
type Deps struct {
	Ledgers  *ledger.Set
	Pending  *ledger.Pending
	Comments CommentsFetcher
	Details  DetailsFetcher
	Roster   classify.Roster
	Targets  classify.Targets
	Logger   *slog.Logger

	// LockPath guards the pending work-list; at most one run may rewrite it.
	LockPath string
	// Delay between candidates, giving the external source breathing room.
	Delay time.Duration
}

// Result describes what happened to one candidate.
type Result struct {
	URL          string
	State        State
	Outcome      classify.Outcome
	ScrapedTotal int
	// Hits names the ledger files that already contained the URL when the
	// candidate was skipped.
	Hits []string
}

// Summary aggregates one run.
type Summary struct {
	Processed int
	Committed int
	Skipped   int
	Failed    int
	Outcomes  map[classify.Outcome]int
}

// Processor is the per-candidate state machine.
type Processor struct {
	deps Deps
}

// New validates deps and builds a Processor.
func New(deps Deps) (*Processor, error) {
	if deps.Ledgers == nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "configure", "nil ledger set", nil)
	}
	if deps.Pending == nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "configure", "nil pending list", nil)
	}
	if deps.Comments == nil {
		return nil, services.Wrap(services.ErrValidation, "workflow", "configure", "nil comments fetcher", nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{deps: deps}, nil
}

// Run processes every URL in the pending work-list. Collaborator failures
// leave the candidate pending and count as failures; ledger failures abort
// the run. The pending lock is held for the whole run.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Outcomes: make(map[classify.Outcome]int)}

	unlock, err := p.acquireLock()
	if err != nil {
		return summary, err
	}
	defer unlock()

	snapshot, err := p.deps.Pending.Load()
	if err != nil {
		return summary, err
	}
	urls := snapshot.URLs()
	p.deps.Logger.Info("run started", "pending", len(urls))

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.deps.Logger.Info("processing", "url", url, "index", i+1, "total", len(urls))

		result, err := p.ProcessOne(ctx, url)
		summary.Processed++
		if err != nil {
			if services.IsFatal(err) {
				return summary, err
			}
			summary.Failed++
			p.deps.Logger.Warn("candidate failed, staying pending", "url", url, "error", err)
			continue
		}

		if _, err := p.deps.Pending.Remove(url); err != nil {
			return summary, err
		}
		switch result.State {
		case StateSkipped:
			summary.Skipped++
			p.deps.Logger.Info("skipped", "url", result.URL, "found_in", strings.Join(result.Hits, ", "))
		case StateCommitted:
			summary.Committed++
			summary.Outcomes[result.Outcome]++
			p.deps.Logger.Info("committed", "url", result.URL, "outcome", string(result.Outcome))
		}

		if p.deps.Delay > 0 && i < len(urls)-1 {
			select {
			case <-time.After(p.deps.Delay):
			case <-ctx.Done():
				return summary, ctx.Err()
			}
		}
	}

	p.deps.Logger.Info("run finished",
		"committed", summary.Committed, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// ProcessOne drives a single candidate through the state machine. It does not
// touch the pending work-list; Run owns that.
func (p *Processor) ProcessOne(ctx context.Context, url string) (Result, error) {
	canonical := textnorm.CanonicalizeURL(url)
	result := Result{URL: canonical, State: StatePending}
	if canonical == "" {
		return result, services.Wrap(services.ErrValidation, "workflow", "process", "blank url", nil)
	}

	// Skip check comes before any fetch; skips are never run-logged.
	done, hits, err := p.deps.Ledgers.AlreadyProcessed(canonical)
	if err != nil {
		return result, err
	}
	if done {
		result.State = StateSkipped
		result.Hits = hits
		return result, nil
	}

	result.State = StateFetching
	comments, err := p.deps.Comments.Fetch(ctx, url, func(fetch.CommentsResult) {
		p.deps.Logger.Debug("result detected mid-stream", "url", canonical)
	})
	if err != nil {
		result.State = StatePending
		return result, err
	}
	result.ScrapedTotal = comments.Total()

	result.State = StateClassifying
	decision := classify.Classify(comments.Record(), p.deps.Roster, p.deps.Targets)
	result.Outcome = decision.Outcome
	p.deps.Logger.Info("classified",
		"url", canonical,
		"scraped_total", result.ScrapedTotal,
		"admin_found", decision.AdminFound,
		"target_found", decision.TargetFound)

	postURL := canonical
	if err := p.commit(ctx, url, &postURL, comments, decision); err != nil {
		result.State = StatePending
		return result, err
	}

	if err := p.deps.Ledgers.RecordOutcome(postURL, result.ScrapedTotal, string(decision.Outcome)); err != nil {
		return result, err
	}
	if err := p.deps.Ledgers.MarkDone(postURL); err != nil {
		return result, err
	}
	result.URL = postURL
	result.State = StateCommitted
	return result, nil
}

// commit writes the outcome-specific ledger rows. postURL is updated when the
// details collaborator reports a better canonical URL.
func (p *Processor) commit(ctx context.Context, rawURL string, postURL *string, comments fetch.CommentsResult, decision classify.Decision) error {
	switch decision.Outcome {
	case classify.OutcomeAccepted:
		details, err := p.fetchDetails(ctx, rawURL, comments)
		if err != nil {
			return err
		}
		if canonical := textnorm.CanonicalizeURL(details.URL); canonical != "" {
			*postURL = canonical
		}
		rep := decision.Representative
		_, err = p.deps.Ledgers.Accepted.AppendUnique(*postURL, []string{
			*postURL,
			oneline(details.DateISO),
			oneline(details.Poster),
			oneline(details.Text),
			oneline(rep.Commenter),
			oneline(rep.Text),
		})
		return err

	case classify.OutcomeSavedNoAdmin:
		details, err := p.fetchDetails(ctx, rawURL, comments)
		if err != nil {
			return err
		}
		if canonical := textnorm.CanonicalizeURL(details.URL); canonical != "" {
			*postURL = canonical
		}
		rows := savedRows(*postURL, details, decision.Matches)
		_, err = p.deps.Ledgers.Saved.AppendUnique(*postURL, rows...)
		return err

	case classify.OutcomeRejectedWithAdmin:
		rep := decision.Representative
		_, err := p.deps.Ledgers.Rejected.AppendUnique(*postURL, []string{
			*postURL, oneline(rep.Commenter), oneline(rep.Text),
		})
		return err

	case classify.OutcomeRejectedNoAdmin:
		_, err := p.deps.Ledgers.Rejected.AppendUnique(*postURL, []string{
			*postURL, ledger.Placeholder, ledger.Placeholder,
		})
		return err
	}
	return services.Wrap(services.ErrValidation, "workflow", "commit", "unknown outcome "+string(decision.Outcome), nil)
}

func (p *Processor) fetchDetails(ctx context.Context, rawURL string, comments fetch.CommentsResult) (classify.PostDetails, error) {
	if p.deps.Details == nil {
		return classify.PostDetails{}, services.Wrap(services.ErrValidation, "workflow", "commit", "no details fetcher configured", nil)
	}
	details, err := p.deps.Details.Fetch(ctx, rawURL)
	if err != nil {
		return classify.PostDetails{}, err
	}
	if details.URL == "" {
		details.URL = comments.URL
	}
	return details, nil
}

// savedRows builds the multi-row saved write: the first matching comment gets
// the full post fields, each further distinct (commenter, text) pair gets a
// placeholder row.
func savedRows(postURL string, details classify.PostDetails, matches []classify.Comment) [][]string {
	first := matches[0]
	rows := [][]string{{
		postURL,
		oneline(details.DateISO),
		oneline(details.Poster),
		oneline(details.Text),
		oneline(first.Commenter),
		oneline(first.Text),
	}}
	type pair struct{ commenter, text string }
	seen := map[pair]struct{}{{oneline(first.Commenter), oneline(first.Text)}: {}}
	for _, c := range matches[1:] {
		key := pair{oneline(c.Commenter), oneline(c.Text)}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, []string{
			ledger.Placeholder, ledger.Placeholder, ledger.Placeholder, ledger.Placeholder,
			key.commenter, key.text,
		})
	}
	return rows
}

// oneline flattens a free-text field for CSV storage: stylized letters fold
// to ASCII and whitespace runs collapse to single spaces, so ledger rows and
// the saved-row dedup compare on the same canonical form.
func oneline(s string) string {
	return textnorm.Normalize(s)
}

// acquireLock takes the pending work-list lock, failing fast when another
// process holds it.
func (p *Processor) acquireLock() (func(), error) {
	if p.deps.LockPath == "" {
		return func() {}, nil
	}
	lock := flock.New(p.deps.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrSession, "workflow", "lock", p.deps.LockPath, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "workflow", "lock", "another run holds the pending work-list", nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
