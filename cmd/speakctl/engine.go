package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakeasy-practice/backend/internal/analyzer"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/speakeasy-practice/backend/internal/practice"
)

// evaluatorFor searches the named set first, then the other one.
func evaluatorFor(bank *phrasebank.Bank, setName string) (*analyzer.Evaluator, error) {
	set, err := phrasebank.ParseSet(setName)
	if err != nil {
		return nil, err
	}
	if set == phrasebank.Evaluation {
		return analyzer.NewEvaluator(bank, analyzer.WithSetOrder(phrasebank.Evaluation, phrasebank.Learning)), nil
	}
	return analyzer.NewEvaluator(bank), nil
}

func newEvaluateCmd(a *app) *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "evaluate <question> <response>",
		Short: "Score a response to a prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := practice.NewService(practice.NewMemoryStore(), a.bank)
			res, err := svc.Evaluate(setName, args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput() {
				return writeJSON(out, res)
			}

			verdict := "FAIL"
			if res.Passed {
				verdict = "PASS"
			}
			fmt.Fprintf(out, "%s  score %.2f\n", verdict, res.Score)
			if res.Breakdown != nil {
				fmt.Fprintf(out, "  keyword %.2f  structure %.2f  semantic %.2f\n",
					res.Breakdown.Keyword, res.Breakdown.Structure, res.Breakdown.Semantic)
			}
			if !res.Matched {
				fmt.Fprintln(out, "  prompt not found in the phrase bank")
			}
			fmt.Fprintln(out, res.Feedback)
			for _, h := range res.Hints {
				fmt.Fprintf(out, "  you said %q, try %q\n", h.Heard, h.Expected)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&setName, "set", "learning", "Question set searched first (learning, evaluation)")
	return cmd
}

func newCorrectCmd(a *app) *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "correct <question> <response>",
		Short: "Print the acceptable answer closest to a response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := evaluatorFor(a.bank, setName)
			if err != nil {
				return err
			}
			correction := ev.GenerateCorrection(args[0], args[1])
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"correction": correction})
			}
			fmt.Fprintln(cmd.OutOrStdout(), correction)
			return nil
		},
	}
	cmd.Flags().StringVar(&setName, "set", "learning", "Question set searched first (learning, evaluation)")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "lookup <question>",
		Short: "List the acceptable answers for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := evaluatorFor(a.bank, setName)
			if err != nil {
				return err
			}
			answers := ev.ExpectedResponses(args[0])
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), answers)
			}
			for i, ans := range answers {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, ans)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&setName, "set", "learning", "Question set searched first (learning, evaluation)")
	return cmd
}

func newQuestionsCmd(a *app) *cobra.Command {
	var setName string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List the prompts of a question set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := phrasebank.ParseSet(setName)
			if err != nil {
				return err
			}
			questions := a.bank.Questions(set)
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), questions)
			}
			for i, q := range questions {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, q)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&setName, "set", "learning", "Question set (learning, evaluation)")
	return cmd
}
