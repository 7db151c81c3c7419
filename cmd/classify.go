package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mailsort/internal/app"
	"mailsort/internal/models"
)

var (
	classifyFrom    string
	classifySubject string
	classifySnippet string
	classifyStdin   bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single message, or a JSON array of messages from stdin",
	Long: `Classifies email messages into categories.

With --from/--subject/--snippet, classifies one message and prints its
category and score. With --stdin, reads a JSON array of
{"from","subject","snippet"} objects and prints a JSON array of
{"label","score"} results, index-aligned with the input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if classifyStdin {
			return classifyFromStdin(cmd, appInstance)
		}

		msg := models.Message{
			Sender:  classifyFrom,
			Subject: classifySubject,
			Snippet: classifySnippet,
		}
		result, err := appInstance.Labeler.Classify(cmd.Context(), msg)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}

		color.New(color.FgCyan, color.Bold).Printf("%s", result.Label)
		fmt.Printf("  (score %.4f)\n", result.Score)
		return nil
	},
}

func classifyFromStdin(cmd *cobra.Command, appInstance *app.App) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	var msgs []models.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("stdin is not a JSON array of messages: %w", err)
	}

	results, err := appInstance.Labeler.ClassifyBatch(cmd.Context(), msgs)
	if err != nil {
		return fmt.Errorf("batch classification failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(results)
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyFrom, "from", "", "Sender address or display name")
	classifyCmd.Flags().StringVar(&classifySubject, "subject", "", "Message subject")
	classifyCmd.Flags().StringVar(&classifySnippet, "snippet", "", "Message body snippet")
	classifyCmd.Flags().BoolVar(&classifyStdin, "stdin", false, "Read a JSON array of messages from stdin")
}
