// Package cli holds the pmapi command tree.
package cli

import (
	"log"

	"project-management-api/internal/config"
	"project-management-api/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "pmapi",
	Short:         "Project management API server and tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Overload(); err != nil {
			log.Println("Error loading .env file, skipping")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

// bootstrap reads the environment and installs the global logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg := config.ReadConfig()
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
