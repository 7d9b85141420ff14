// Command speakctl grades practice responses, browses the phrase bank,
// drafts new learning prompts, and runs practice sessions in the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
)

// app holds the global flags shared by every subcommand.
type app struct {
	bankPath     string
	logLevel     string
	outputFormat string

	logger zerolog.Logger
	bank   *phrasebank.Bank
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "speakctl",
		Short: "speakctl - spoken English practice from the terminal",
		Long: `speakctl grades answers to conversational prompts the same way the practice service does.

Examples:
  # Grade one answer
  speakctl evaluate "How are you today?" "I'm fine, thanks. And you?"

  # Show the closest acceptable answer
  speakctl correct "Where do you live?" "I living London"

  # List the evaluation prompts
  speakctl questions --set evaluation

  # Run a learning session, typing each answer
  speakctl practice

  # Draft five new learning prompts and merge them into a bank file
  speakctl generate --count 5 --merge --out phrases.yaml
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), a.logLevel, "console")
			bank, err := phrasebank.Load(a.bankPath)
			if err != nil {
				return err
			}
			a.bank = bank
			if a.outputFormat != "text" && a.outputFormat != "json" {
				return fmt.Errorf("--format must be text or json, got %q", a.outputFormat)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.bankPath, "bank", os.Getenv("PHRASEBANK_PATH"), "Phrase bank YAML file (built-in bank when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.outputFormat, "format", "text", "Output format (text, json)")

	root.AddCommand(newEvaluateCmd(a))
	root.AddCommand(newCorrectCmd(a))
	root.AddCommand(newLookupCmd(a))
	root.AddCommand(newQuestionsCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newPracticeCmd(a))

	return root
}

func (a *app) jsonOutput() bool {
	return a.outputFormat == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
