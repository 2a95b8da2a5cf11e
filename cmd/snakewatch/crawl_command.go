package main

import (
	"fmt"
	"strconv"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"snakewatch/internal/crawler"
	"snakewatch/internal/feedview"
)

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var targetNew int

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Collect new candidate post URLs from the group feed",
		Long: `Crawl scrolls the configured group feed through the external feed driver,
collects post URLs not seen before, and appends them to the pending
work-list for a later run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			// The crawler appends to the pending work-list, so it holds the
			// same lock the classification run takes.
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire pending lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run holds the pending work-list (%s)", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			ledgers, pending, err := ctx.ledgers()
			if err != nil {
				return err
			}
			snapshot, err := pending.Load()
			if err != nil {
				return err
			}
			done, err := ledgers.Done.Identities()
			if err != nil {
				return err
			}

			store, err := crawler.OpenSeenStore(cfg.SeenDBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			settings := crawlerSettings(cfg)
			if targetNew > 0 {
				settings.TargetNew = targetNew
			}

			factory := feedview.Factory(cfg.Crawler.DriverCommand, feedview.WithLogger(logger))
			cr, err := crawler.New(settings, factory, pending.Append,
				crawler.WithLogger(logger),
				crawler.WithSeenStore(store))
			if err != nil {
				return err
			}
			cr.Exclude(snapshot.URLs())
			cr.Exclude(done)

			stats, err := cr.Run(runCtx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Metric", "Value"},
				[][]string{
					{"New URLs collected", strconv.Itoa(stats.NewCollected)},
					{"Scroll rounds", strconv.Itoa(stats.Rounds)},
					{"Baseline size", strconv.Itoa(stats.BaselineSize)},
					{"Soft reloads", strconv.Itoa(stats.Reloads)},
					{"Session recoveries", strconv.Itoa(stats.Recoveries)},
					{"Stop reason", string(stats.Reason)},
				},
				2,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&targetNew, "target", 0, "Override the number of new URLs to collect")
	return cmd
}
