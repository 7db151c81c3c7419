package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mailsort/internal/app"
	"mailsort/internal/clix"
	"mailsort/internal/gmail"
	"mailsort/internal/models"
	"mailsort/internal/tasks"
)

var fetchApply bool

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent inbox messages and classify them",
	Long: `Fetches recent messages from the authenticated Gmail inbox, classifies
each one, and prints the results. With --apply, additionally enqueues a
background task per message to apply the winning category as a Gmail label.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		params, err := clix.ParseFetch(cmd.Flags(), appInstance.Config.Gmail.MaxResults)
		if err != nil {
			return err
		}
		output, err := clix.ParseOutput(cmd.Flags())
		if err != nil {
			return err
		}
		if params.Query == "" {
			params.Query = appInstance.Config.Gmail.Query
		}

		client, err := gmail.NewClient(ctx, appInstance.Config.Gmail.CredentialsFile, appInstance.Config.Gmail.TokenFile)
		if err != nil {
			return fmt.Errorf("gmail client: %w", err)
		}

		emails, err := client.Fetch(ctx, params.Limit, params.Query)
		if err != nil {
			return fmt.Errorf("fetching messages: %w", err)
		}
		if len(emails) == 0 {
			fmt.Println("No messages found.")
			return nil
		}

		msgs := make([]models.Message, len(emails))
		for i, e := range emails {
			msgs[i] = e.Message()
		}
		results, err := appInstance.Labeler.ClassifyBatch(ctx, msgs)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}

		if output == "json" {
			if err := printFetchJSON(emails, results); err != nil {
				return err
			}
		} else {
			printFetchTable(emails, results)
		}

		if fetchApply {
			return enqueueLabels(ctx, appInstance, client, emails, results)
		}
		return nil
	},
}

func printFetchTable(emails []gmail.Email, results []models.ClassificationResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Category", "Score", "From", "Subject"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for i, e := range emails {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			results[i].Label,
			fmt.Sprintf("%.3f", results[i].Score),
			truncate(e.Sender, 30),
			truncate(e.Subject, 50),
		})
	}
	table.Render()
}

func printFetchJSON(emails []gmail.Email, results []models.ClassificationResult) error {
	type row struct {
		ID      string  `json:"id"`
		From    string  `json:"from"`
		Subject string  `json:"subject"`
		Label   string  `json:"label"`
		Score   float64 `json:"score"`
	}
	rows := make([]row, len(emails))
	for i, e := range emails {
		rows[i] = row{ID: e.ID, From: e.Sender, Subject: e.Subject, Label: results[i].Label, Score: results[i].Score}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// enqueueLabels resolves each winning category to a Gmail label id and
// enqueues one label-apply task per message for the worker.
func enqueueLabels(ctx context.Context, appInstance *app.App, client *gmail.Client, emails []gmail.Email, results []models.ClassificationResult) error {
	labels, err := client.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("listing labels: %w", err)
	}

	enqueued := 0
	for i, e := range emails {
		labelID, ok := labels[results[i].Label]
		if !ok {
			log.Warnf("Skipping message %s: %v: %q", e.ID, models.ErrUnknownCategory, results[i].Label)
			continue
		}
		task, err := tasks.NewLabelApplyTask(e.ID, labelID, results[i].Label)
		if err != nil {
			return fmt.Errorf("building label task for message %s: %w", e.ID, err)
		}
		if _, err := appInstance.JobClient.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("enqueueing label task for message %s: %w", e.ID, err)
		}
		enqueued++
	}
	fmt.Printf("Enqueued %d label task(s). Run 'mailsort worker' to apply them.\n", enqueued)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Int64("limit", 0, "Maximum number of messages to fetch (default from config)")
	fetchCmd.Flags().String("query", "", "Gmail search query, e.g. \"newer_than:7d\"")
	fetchCmd.Flags().String("output", "table", "Output format: table or json")
	fetchCmd.Flags().BoolVar(&fetchApply, "apply", false, "Enqueue tasks to apply the winning category as a Gmail label")
}
