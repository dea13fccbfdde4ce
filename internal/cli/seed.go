package cli

import (
	"fmt"
	"time"

	"project-management-api/internal/database"
	"project-management-api/internal/seed"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty database with demo users, projects and tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := database.InitDB(cfg); err != nil {
			return err
		}
		defer database.Close() //nolint:errcheck

		res, err := seed.Run(cmd.Context(), database.GetDB(), time.Now().UTC())
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "Database already contains users, nothing to do.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d projects and %d tasks (password %q).\n",
			res.Users, res.Projects, res.Tasks, seed.DefaultPassword)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
