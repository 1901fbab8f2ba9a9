package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/omnipress/publishq/internal/job"
	"github.com/spf13/cobra"
)

var (
	jobsStatus  string
	jobsChannel string
	jobsSearch  string
	jobsPage    int
	jobsPerPage int
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and control queue jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs with optional filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		page, err := e.service.ListJobs(cmd.Context(), jobsPage, jobsPerPage, job.JobFilters{
			Status:  jobsStatus,
			Channel: jobsChannel,
			Search:  jobsSearch,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCHANNEL\tSTATUS\tATTEMPTS\tRUN AT\tERROR")
		for _, j := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%s\t%s\n",
				j.ID, j.Channel, j.Status, j.Attempts, j.MaxAttempts,
				j.RunAt.Format("2006-01-02 15:04:05"), truncate(orDash(j.Error), 48))
		}
		w.Flush()
		fmt.Fprintf(cmd.OutOrStdout(), "total: %d (page %d)\n", page.Total, page.Page)
		return nil
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 0)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		j, err := e.service.GetJobByID(cmd.Context(), uint(id))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "id:              %d\n", j.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "channel:         %s\n", j.Channel)
		fmt.Fprintf(cmd.OutOrStdout(), "status:          %s\n", j.Status)
		fmt.Fprintf(cmd.OutOrStdout(), "attempts:        %d/%d\n", j.Attempts, j.MaxAttempts)
		fmt.Fprintf(cmd.OutOrStdout(), "run_at:          %s\n", j.RunAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(cmd.OutOrStdout(), "idempotency_key: %s\n", j.IdempotencyKey)
		fmt.Fprintf(cmd.OutOrStdout(), "remote_id:       %s\n", orDash(j.RemoteID))
		fmt.Fprintf(cmd.OutOrStdout(), "error:           %s\n", orDash(j.Error))
		fmt.Fprintf(cmd.OutOrStdout(), "payload:         %s\n", string(j.Payload))
		return nil
	},
}

var jobsReplayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Force a failed or pending job back into the runnable set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 0)
		if err != nil {
			return fmt.Errorf("invalid job id %q", args[0])
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		j, err := e.service.ReplayJob(cmd.Context(), uint(id))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "job %d is pending, runnable at %s\n", j.ID, j.RunAt.Format("15:04:05"))
		return nil
	},
}

func init() {
	jobsListCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status")
	jobsListCmd.Flags().StringVar(&jobsChannel, "channel", "", "filter by channel")
	jobsListCmd.Flags().StringVar(&jobsSearch, "search", "", "match idempotency key or error substring")
	jobsListCmd.Flags().IntVar(&jobsPage, "page", 1, "page number")
	jobsListCmd.Flags().IntVar(&jobsPerPage, "per-page", 20, "page size")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsReplayCmd)
}
