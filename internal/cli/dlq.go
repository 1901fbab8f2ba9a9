package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	dlqChannel string
	dlqPage    int
	dlqPerPage int
	dlqDays    int
	dlqDryRun  bool
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and replay dead-lettered jobs",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dead letter entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		page, err := e.service.ListDLQ(cmd.Context(), dlqPage, dlqPerPage, dlqChannel)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tJOB\tCHANNEL\tATTEMPTS\tMOVED AT\tREPLAYED\tERROR")
		for _, entry := range page.Items {
			replayed := "no"
			if entry.ReplayedAt != nil {
				replayed = fmt.Sprintf("job %d", *entry.ReplayJobID)
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%s\t%s\t%s\n",
				entry.ID, entry.OriginalJobID, entry.Channel, entry.TotalAttempts,
				entry.MovedToDLQAt.Format("2006-01-02 15:04:05"), replayed,
				truncate(entry.FinalError, 48))
		}
		w.Flush()
		fmt.Fprintf(cmd.OutOrStdout(), "total: %d (page %d)\n", page.Total, page.Page)
		return nil
	},
}

var dlqStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dead letter queue statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		stats, err := e.service.DLQStats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "total:      %d\n", stats.Total)
		fmt.Fprintf(cmd.OutOrStdout(), "last 24h:   %d\n", stats.Recent24h)
		for channel, count := range stats.ByChannel {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %d\n", channel, count)
		}
		return nil
	},
}

var dlqRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Re-enqueue a fresh job from a dead letter entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 0)
		if err != nil {
			return fmt.Errorf("invalid dlq entry id %q", args[0])
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		j, err := e.service.RetryDLQ(cmd.Context(), uint(id))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "re-enqueued as job %d on %s\n", j.ID, j.Channel)
		return nil
	},
}

var dlqCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge old dead letter entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		count, err := e.service.CleanupDLQ(cmd.Context(), dlqDays, dlqDryRun)
		if err != nil {
			return err
		}

		if dlqDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%d entries older than %d days would be purged\n", count, dlqDays)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries older than %d days\n", count, dlqDays)
		}
		return nil
	},
}

func init() {
	dlqListCmd.Flags().StringVar(&dlqChannel, "channel", "", "filter by channel")
	dlqListCmd.Flags().IntVar(&dlqPage, "page", 1, "page number")
	dlqListCmd.Flags().IntVar(&dlqPerPage, "per-page", 20, "page size")

	dlqCleanupCmd.Flags().IntVar(&dlqDays, "older-than-days", 30, "purge entries older than this many days")
	dlqCleanupCmd.Flags().BoolVar(&dlqDryRun, "dry-run", false, "report the count without deleting")

	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqStatsCmd)
	dlqCmd.AddCommand(dlqRetryCmd)
	dlqCmd.AddCommand(dlqCleanupCmd)
}
