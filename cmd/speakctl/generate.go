package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/speakeasy-practice/backend/internal/config"
	"github.com/speakeasy-practice/backend/internal/generator"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
)

const generateTimeout = 3 * time.Minute

func newGenerateCmd(a *app) *cobra.Command {
	var (
		count int
		topic string
		out   string
		merge bool
		mock  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft new learning prompts with an LLM",
		Long: `Draft new learning prompts and their answers.

The backend follows the environment: USE_CLI_GENERATOR=true shells out to the claude CLI,
MOCK_GENERATOR=true (or --mock) returns canned sets, and otherwise the Anthropic API is
called with ANTHROPIC_API_KEY and ANTHROPIC_MODEL.

Without --merge only the new sets are written, under a "learning" key. With --merge the
whole bank is written with the new sets appended to its learning set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadGenerator()
			if mock {
				cfg.Mock = true
			}
			gen := generator.NewGenerator(cfg, a.logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), generateTimeout)
			defer cancel()

			batch, resp, err := gen.GenerateSets(ctx, generator.Request{
				Topic:    topic,
				Count:    count,
				Existing: a.bank.Questions(phrasebank.Learning),
			})
			if err != nil {
				return err
			}
			a.logger.Info().
				Str("model", gen.ModelName()).
				Int("sets", len(batch.Sets)).
				Int("prompt_tokens", resp.PromptTokens).
				Int("output_tokens", resp.OutputTokens).
				Msg("generation finished")

			if a.jsonOutput() && out == "" && !merge {
				return writeJSON(cmd.OutOrStdout(), batch)
			}

			var data []byte
			if merge {
				merged, added, err := generator.Merge(a.bank, batch)
				if err != nil {
					return err
				}
				a.logger.Info().Int("added", added).Int("skipped", len(batch.Sets)-added).Msg("sets merged")
				if data, err = phrasebank.Marshal(merged); err != nil {
					return err
				}
			} else {
				if data, err = yaml.Marshal(map[string][]phrasebank.Entry{"learning": generator.Entries(batch)}); err != nil {
					return fmt.Errorf("encode sets: %w", err)
				}
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d sets to %s\n", len(batch.Sets), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of prompts to draft")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic of the prompts (mixed everyday topics when empty)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write YAML to this file instead of stdout")
	cmd.Flags().BoolVar(&merge, "merge", false, "Write the whole bank with the new sets merged in")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use canned sets instead of a model")
	return cmd
}
