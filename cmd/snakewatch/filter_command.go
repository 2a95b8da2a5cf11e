package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"snakewatch/internal/workflow"
)

func newFilterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <post-url>",
		Short: "Classify a single post immediately",
		Long: `Filter runs one post through the full fetch-and-classify pipeline and
records its outcome. The pending work-list is not consulted or modified,
so the command works on URLs that were never crawled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			processor, err := newProcessor(ctx, logger, false)
			if err != nil {
				return err
			}

			result, err := processor.ProcessOne(runCtx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result.State {
			case workflow.StateSkipped:
				fmt.Fprintf(out, "Already processed: %s (found in %s)\n",
					result.URL, strings.Join(result.Hits, ", "))
			case workflow.StateCommitted:
				fmt.Fprintf(out, "Outcome: %s (%d comments scraped)\n",
					result.Outcome, result.ScrapedTotal)
			default:
				fmt.Fprintf(out, "No decision recorded for %s\n", result.URL)
			}
			return nil
		},
	}
}
