// Package cmd implements the attestctl CLI commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trustgate/attest/internal/version"
	"github.com/trustgate/attest/pkg/clierror"
	"github.com/trustgate/attest/pkg/store"
)

var (
	// Global flags
	outputFormat string
	dbPath       string

	// Shared store instance
	resultStore *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "attestctl",
	Short: "CLI for the attestation verifier",
	Long: `attestctl inspects the state of the attestation verifier.

It provides commands to list per-endpoint attestation results, review
denial reasons, and tail the audit log.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that don't touch the database
		switch cmd.Name() {
		case "completion", "help", "reasons":
			return nil
		}

		path := dbPath
		if path == "" {
			path = store.DefaultPath()
		}

		var err error
		resultStore, err = store.Open(path)
		if err != nil {
			return clierror.StoreOpenFailed(path, err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if resultStore != nil {
			resultStore.Close()
		}
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for attestctl.

To load completions:

Bash:
  source <(attestctl completion bash)

Zsh:
  attestctl completion zsh > ~/.oh-my-zsh/completions/_attestctl

Fish:
  attestctl completion fish > ~/.config/fish/completions/attestctl.fish`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unknown shell: %s", args[0])
		}
	},
}

func init() {
	store.SetAppName("attestd")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.local/share/attestd/attestd.db)")
	rootCmd.AddCommand(completionCmd)
}

// Execute runs the root command. Structured CLI errors are printed with
// their code and hint and map to their own exit codes; anything else
// exits with the general code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return clierror.ExitSuccess
	}

	var ce *clierror.CLIError
	if errors.As(err, &ce) {
		clierror.PrintError(ce, outputFormat)
		return ce.ExitCode
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return clierror.ExitGeneral
}

// formatOutput handles output formatting based on the --output flag.
func formatOutput(data interface{}) error {
	switch outputFormat {
	case "json":
		return outputJSON(data)
	case "yaml":
		return outputYAML(data)
	default:
		// Table format is handled by each command
		return nil
	}
}

func outputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func outputYAML(data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
