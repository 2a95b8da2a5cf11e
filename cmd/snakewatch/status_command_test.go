package main

import (
	"path/filepath"
	"testing"

	"snakewatch/internal/ledger"
)

func TestStatusCountsLedgers(t *testing.T) {
	cfg, configPath := setupCLIConfig(t)

	out, _, err := runCLI(t, []string{"status"}, configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"Accepted\t0", "Pending\t0", "Seen URLs\t0"} {
		requireContains(t, out, want)
	}

	pending := ledger.NewPending(filepath.Join(cfg.Paths.InputDir, ledger.PendingFile))
	if err := pending.Append("https://www.facebook.com/groups/snakespotters/posts/11"); err != nil {
		t.Fatalf("append pending: %v", err)
	}
	set := ledger.NewSet(cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.StateDir)
	if err := set.MarkDone("https://www.facebook.com/groups/snakespotters/posts/7"); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	out, _, err = runCLI(t, []string{"status"}, configPath)
	if err != nil {
		t.Fatalf("status after seeding: %v", err)
	}
	requireContains(t, out, "Pending\t1")
	requireContains(t, out, "Done\t1")
}
