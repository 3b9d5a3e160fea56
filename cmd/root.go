package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajramo61/aem-core-wcm-components/internal/app"
	"github.com/rajramo61/aem-core-wcm-components/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "corewcm",
	Short: "Core WCM component services",
	Long: `corewcm serves component pages with AMP mode forwarding and
aggregates client library CSS/JS bundles by category.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// Runs before every subcommand; the initialized app rides on the
	// command context.
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

// Unexported key type keeps the context value private to this package.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
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
	Short: "Check repository store connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Pinging the repository store...")
		if err := appInstance.Resources.Ping(ctx); err != nil {
			return fmt.Errorf("store ping failed: %w", err)
		}
		fmt.Println("Repository store reachable.")
		return nil
	},
}
