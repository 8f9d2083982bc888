package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trustgate/attest/pkg/attest"
)

func init() {
	rootCmd.AddCommand(reasonsCmd)
	reasonsCmd.Flags().String("lang", "", "Preferred language list, e.g. \"fr, de\"")
}

var reasonsCmd = &cobra.Command{
	Use:   "reasons",
	Short: "Show the localized attestation failure reasons",
	Long: `Show the reason strings returned to endpoints whose attestation fails.

Without --lang, every registered language is listed. With --lang, the
string actually selected for that preference list is shown, including
the fallback to the default language.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pref, _ := cmd.Flags().GetString("lang")

		if pref != "" {
			text, lang := attest.LookupReason(pref)
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", lang, text)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANG\tREASON")
		for _, lang := range attest.ReasonLanguages() {
			text, _ := attest.LookupReason(lang)
			fmt.Fprintf(w, "%s\t%s\n", lang, text)
		}
		return w.Flush()
	},
}
