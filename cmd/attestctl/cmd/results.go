package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trustgate/attest/pkg/clierror"
	"github.com/trustgate/attest/pkg/pts"
	"github.com/trustgate/attest/pkg/store"
)

var (
	allowFmt = color.New(color.FgGreen).SprintFunc()
	isoFmt   = color.New(color.FgYellow).SprintFunc()
	denyFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsListCmd.Flags().String("recommendation", "", "Filter by recommendation: allow, isolate, no-access")
	resultsShowCmd.Flags().Bool("evidence", false, "Show the recorded measurement evidence")
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect per-endpoint attestation results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attestation results",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, _ := cmd.Flags().GetString("recommendation")

		var results []*store.Result
		var err error
		if rec != "" {
			switch rec {
			case "allow", "isolate", "no-access":
			default:
				return clierror.InvalidFilter("recommendation", rec, "allow", "isolate", "no-access")
			}
			results, err = resultStore.ListResultsByRecommendation(rec)
		} else {
			results, err = resultStore.ListResults()
		}
		if err != nil {
			return clierror.InternalError(err)
		}

		if outputFormat != "table" {
			return formatOutput(results)
		}

		if len(results) == 0 {
			fmt.Println("No attestation results recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ENDPOINT\tRECOMMENDATION\tEVALUATION\tREQUESTS\tAGE")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
				r.Endpoint, colorRecommendation(r.Recommendation), r.Evaluation,
				r.RequestsResolved, r.RequestsIssued,
				r.Age().Round(time.Second))
		}
		return w.Flush()
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <endpoint>",
	Short: "Show one endpoint's attestation result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resultStore.GetResult(args[0])
		if errors.Is(err, store.ErrResultNotFound) {
			return clierror.ResultNotFound(args[0])
		}
		if err != nil {
			return clierror.InternalError(err)
		}

		if outputFormat != "table" {
			return formatOutput(r)
		}

		fmt.Printf("Endpoint:        %s\n", r.Endpoint)
		fmt.Printf("Session:         %s\n", r.SessionID)
		fmt.Printf("Recommendation:  %s\n", colorRecommendation(r.Recommendation))
		fmt.Printf("Evaluation:      %s\n", r.Evaluation)
		if r.Reason != "" {
			fmt.Printf("Reason [%s]:     %s\n", r.ReasonLang, r.Reason)
		}
		fmt.Printf("Requests:        %d issued, %d resolved\n", r.RequestsIssued, r.RequestsResolved)
		fmt.Printf("Updated:         %s (%s ago)\n",
			r.UpdatedAt.Format(time.RFC3339), r.Age().Round(time.Second))

		showEvidence, _ := cmd.Flags().GetBool("evidence")
		if showEvidence && len(r.Evidence) > 0 {
			ev, err := pts.DecodeEvidence(r.Evidence)
			if err != nil {
				return clierror.EvidenceDecodeFailed(r.Endpoint, err)
			}
			fmt.Printf("\nEvidence (platform %q, collected %s):\n",
				ev.PlatformInfo, ev.CollectedAt.Format(time.RFC3339))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tALGORITHM\tDIGEST")
			for _, m := range ev.Measurements {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Path, m.Algorithm, truncate(m.Digest, 32))
			}
			w.Flush()
		}
		return nil
	},
}

func colorRecommendation(rec string) string {
	switch rec {
	case "allow":
		return allowFmt(rec)
	case "isolate":
		return isoFmt(rec)
	case "no-access":
		return denyFmt(rec)
	default:
		return rec
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
