package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/omnipress/publishq/internal/models"
	"github.com/spf13/cobra"
)

var breakersCmd = &cobra.Command{
	Use:   "breakers",
	Short: "Inspect and reset circuit breakers",
}

var breakersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted breaker state per service",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		states, err := e.breakerRepo.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERVICE\tSTATE\tFAILURES\tOPENED AT\tLAST FAILURE")
		for _, s := range states {
			openedAt := "-"
			if s.OpenedAt != nil {
				openedAt = s.OpenedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				s.ServiceName, s.State, s.FailureCount, openedAt, truncate(orDash(s.LastFailure), 48))
		}
		return w.Flush()
	},
}

var breakersResetCmd = &cobra.Command{
	Use:   "reset <service>",
	Short: "Force a breaker closed and clear its counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer closeEnv(e)

		err = e.breakerRepo.Save(cmd.Context(), &models.BreakerState{
			ServiceName:  args[0],
			State:        "closed",
			FailureCount: 0,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "breaker %s reset to closed\n", args[0])
		return nil
	},
}

func init() {
	breakersCmd.AddCommand(breakersListCmd)
	breakersCmd.AddCommand(breakersResetCmd)
}
