package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"snakewatch/internal/classify"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Classify every pending post and record outcomes",
		Long: `Run walks the pending work-list, fetches each post's comment section
through the external collaborator, classifies moderator acknowledgment,
and durably records one outcome per post. Already-processed posts are
skipped; failed posts stay pending for the next run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			processor, err := newProcessor(ctx, logger, true)
			if err != nil {
				return err
			}

			summary, runErr := processor.Run(runCtx)

			rows := [][]string{
				{"Processed", strconv.Itoa(summary.Processed)},
				{"Committed", strconv.Itoa(summary.Committed)},
				{"Skipped", strconv.Itoa(summary.Skipped)},
				{"Failed", strconv.Itoa(summary.Failed)},
			}
			outcomes := make([]string, 0, len(summary.Outcomes))
			for outcome := range summary.Outcomes {
				outcomes = append(outcomes, string(outcome))
			}
			sort.Strings(outcomes)
			for _, outcome := range outcomes {
				rows = append(rows, []string{
					outcome, strconv.Itoa(summary.Outcomes[classify.Outcome(outcome)]),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Result", "Count"}, rows, 2))
			return runErr
		},
	}
}
