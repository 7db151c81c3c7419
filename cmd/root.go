package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mailsort/internal/app"
	"mailsort/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mailsort",
	Short: "Mailsort CLI App",
	Long: `Mailsort classifies email messages into categories by comparing them
semantically against a fixed set of category descriptions.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stashed by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check cache connectivity and embedding provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}
		defer appInstance.Close()

		if appInstance.Cache != nil {
			fmt.Println("Checking embedding cache...")
			if err := appInstance.Cache.Ping(ctx); err != nil {
				return fmt.Errorf("embedding cache ping failed: %w", err)
			}
			fmt.Println("Embedding cache OK.")
		} else {
			fmt.Println("Embedding cache disabled.")
		}

		if appInstance.Embedding != nil {
			fmt.Printf("Embedding provider: %s (model %s, dimension %d, status %s)\n",
				appInstance.Embedding.Name(),
				appInstance.Embedding.ModelName(),
				appInstance.Embedding.Dimension(),
				appInstance.Embedding.Status())
		} else {
			fmt.Println("No embedding provider configured (rule-based mode).")
		}
		return nil
	},
}
