package main

import (
	"fmt"
	"log/slog"
	"time"

	"snakewatch/internal/classify"
	"snakewatch/internal/config"
	"snakewatch/internal/crawler"
	"snakewatch/internal/fetch"
	"snakewatch/internal/workflow"
)

// crawlerSettings maps the file-level crawler knobs onto the crawler package's
// duration-typed config.
func crawlerSettings(cfg *config.Config) crawler.Config {
	return crawler.Config{
		GroupURL:      cfg.Group.URL,
		UseMobile:     cfg.Group.UseMobile,
		Chronological: cfg.Group.Chronological,

		TargetNew:    cfg.Crawler.TargetNew,
		WarmupRounds: cfg.Crawler.WarmupRounds,
		MaxRounds:    cfg.Crawler.MaxRounds,
		StallLimit:   cfg.Crawler.StallLimit,

		Pause:        time.Duration(cfg.Crawler.PauseSeconds * float64(time.Second)),
		IdleLimit:    time.Duration(cfg.Crawler.IdleLimitSeconds * float64(time.Second)),
		PollInterval: time.Duration(cfg.Crawler.PollIntervalMS) * time.Millisecond,
		NudgeTries:   cfg.Crawler.NudgeTries,
		NudgePause:   time.Duration(cfg.Crawler.NudgePauseMS) * time.Millisecond,

		PruneKeepLast:           cfg.Crawler.PruneKeepLast,
		MaxArticlesBeforeReload: cfg.Crawler.MaxArticlesBeforeReload,
		ReloadEveryRounds:       cfg.Crawler.ReloadEveryRounds,

		SessionRetries:      cfg.Crawler.SessionRetries,
		SessionRetryBackoff: time.Duration(cfg.Crawler.SessionRetryBackoffSeconds) * time.Second,
	}
}

// newProcessor assembles the classification workflow from config. withLock
// controls whether the pending work-list lock is taken; single-URL commands
// skip it because they never rewrite the list.
func newProcessor(ctx *commandContext, logger *slog.Logger, withLock bool) (*workflow.Processor, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	ledgers, pending, err := ctx.ledgers()
	if err != nil {
		return nil, err
	}

	roster, err := classify.LoadRoster(cfg.Group.StaffFile)
	if err != nil {
		return nil, fmt.Errorf("load staff roster: %w", err)
	}
	targets, err := classify.CompileTargets(cfg.Targets.Patterns)
	if err != nil {
		return nil, fmt.Errorf("compile target patterns: %w", err)
	}

	fetchOpts := []fetch.Option{
		fetch.WithTimeout(cfg.CollaboratorTimeout()),
		fetch.WithLogger(logger),
	}
	comments, err := fetch.NewCommentsClient(cfg.Collaborators.CommentsCommand, fetchOpts...)
	if err != nil {
		return nil, err
	}
	details, err := fetch.NewDetailsClient(cfg.Collaborators.DetailsCommand, fetchOpts...)
	if err != nil {
		return nil, err
	}

	deps := workflow.Deps{
		Ledgers:  ledgers,
		Pending:  pending,
		Comments: comments,
		Details:  details,
		Roster:   roster,
		Targets:  targets,
		Logger:   logger,
	}
	if withLock {
		deps.LockPath = cfg.LockPath()
		deps.Delay = cfg.WorkflowDelay()
	}
	return workflow.New(deps)
}
