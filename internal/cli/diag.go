package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Print a queue health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		due, err := e.jobRepo.DueJobs(ctx, time.Now().UTC(), e.queueCfg.BatchLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "due jobs (next batch):  %d\n", len(due))

		running, err := e.jobRepo.RunningChannels(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "running jobs:           %d channel(s) active\n", len(running))
		for channel, count := range running {
			fmt.Fprintf(out, "  %-18s %d\n", channel, count)
		}

		stats, err := e.service.DLQStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "dlq total:              %d (%d in last 24h)\n", stats.Total, stats.Recent24h)

		states, err := e.breakerRepo.List(ctx)
		if err != nil {
			return err
		}
		openCount := 0
		for _, s := range states {
			if s.State != "closed" {
				openCount++
			}
		}
		fmt.Fprintf(out, "breakers:               %d tracked, %d not closed\n", len(states), openCount)

		return nil
	},
}
