package cli

import (
	"fmt"

	"project-management-api/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run Migrations",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(cmd.Help())
	},
}

// withDB opens the configured database without migrating it.
func withDB(fn func(db *gorm.DB) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	unlock, err := lockDatabase(cfg.DBPath)
	if err != nil {
		return err
	}
	defer unlock()

	db, err := database.Open(cfg.DBPath, database.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(db)
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			if err := database.Migrate(db); err != nil {
				return err
			}
			version, err := database.SchemaVersion(db)
			if err != nil {
				return err
			}
			zap.L().Info("migrations applied", zap.Int64("version", version))
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(database.MigrateDown)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(database.MigrationStatus)
	},
}

// Register the "migrate" command
func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
