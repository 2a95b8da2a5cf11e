package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"snakewatch/internal/crawler"
	"snakewatch/internal/ledger"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show row counts for every ledger and the seen-set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledgers, pending, err := ctx.ledgers()
			if err != nil {
				return err
			}

			type entry struct {
				label string
				path  string
				count int
			}
			entries := make([]entry, 0, 7)

			counted := []struct {
				label  string
				ledger *ledger.Ledger
			}{
				{"Accepted", ledgers.Accepted},
				{"Saved (no admin)", ledgers.Saved},
				{"Rejected", ledgers.Rejected},
				{"Run log", ledgers.RunLog},
				{"Done", ledgers.Done},
			}
			for _, c := range counted {
				n, err := c.ledger.Count()
				if err != nil {
					return err
				}
				entries = append(entries, entry{c.label, c.ledger.Path(), n})
			}

			snapshot, err := pending.Load()
			if err != nil {
				return err
			}
			entries = append(entries, entry{"Pending", pending.Path(), snapshot.Len()})

			seen, err := seenCount(cmd.Context(), cfg.SeenDBPath())
			if err != nil {
				return err
			}
			entries = append(entries, entry{"Seen URLs", cfg.SeenDBPath(), seen})

			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				for _, e := range entries {
					fmt.Fprintf(out, "%s\t%d\t%s\n", e.label, e.count, e.path)
				}
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.label, filepath.Base(e.path), strconv.Itoa(e.count)})
			}
			fmt.Fprintln(out, renderTable([]string{"Ledger", "File", "Rows"}, rows, 3))
			return nil
		},
	}
}

// seenCount reports the persisted seen-set size without creating the database
// when no crawl has run yet.
func seenCount(ctx context.Context, dbPath string) (int, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat seen store: %w", err)
	}
	store, err := crawler.OpenSeenStore(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
