package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/trustgate/attest/pkg/clierror"
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Int("limit", 50, "Maximum number of entries to show")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Tail the attestation audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := resultStore.ListAuditEntries(limit)
		if err != nil {
			return clierror.InternalError(err)
		}

		if outputFormat != "table" {
			return formatOutput(entries)
		}

		if len(entries) == 0 {
			fmt.Println("Audit log is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tEVENT\tENDPOINT\tDETAILS")
		for _, e := range entries {
			details := ""
			for k, v := range e.Details {
				if details != "" {
					details += " "
				}
				details += fmt.Sprintf("%s=%s", k, v)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Timestamp.Format(time.RFC3339), e.EventType, e.Endpoint, truncate(details, 60))
		}
		return w.Flush()
	},
}
