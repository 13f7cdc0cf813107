package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"superlearn/learning-portal/learning-portal-backend/internal/journey"
)

var questionsJSON bool

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the quiz bank with the correct answers",
	Args:  cobra.NoArgs,
	RunE:  runQuestions,
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.Flags().BoolVar(&questionsJSON, "json", false, "Print the bank as JSON")
}

func runQuestions(cmd *cobra.Command, args []string) error {
	flow := journey.DefaultFlow()
	out := cmd.OutOrStdout()

	if questionsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(flow.Questions)
	}

	for i, q := range flow.Questions {
		fmt.Fprintf(out, "%d. %s\n", i+1, q.Text)
		for j, opt := range q.Options {
			marker := " "
			if q.IsCorrect(j) {
				marker = "*"
			}
			fmt.Fprintf(out, "   %s [%d] %s\n", marker, j, opt)
		}
	}
	fmt.Fprintf(out, "\npass threshold: %d of %d\n", flow.PassThreshold, len(flow.Questions))
	return nil
}
