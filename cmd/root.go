package cmd

import (
	"fmt"
	"os"

	"movie-catalog/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	config *utils.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "movie-catalog",
	Short: "Personal movie catalog with poster uploads",
	Long: `movie-catalog serves a small movie catalog: list, create and edit
movies with an uploaded poster image.

Run 'movie-catalog serve' to start the HTTP server and
'movie-catalog migrate' to create or update the database schema.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = utils.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to init logger: %v. Using production logger.\n", err)
			logger, _ = zap.NewProduction()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
}
