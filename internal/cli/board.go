package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"project-management-api/internal/client"
	"project-management-api/internal/tui"

	"github.com/spf13/cobra"
)

var boardOpts struct {
	projectID uint
	baseURL   string
	email     string
	password  string
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open a project's tasks as a kanban board",
	Long: "Open a project's tasks as a kanban board.\n" +
		"Credentials come from --email/--password, or from PMAPI_TOKEN when no email is given.\n" +
		"The API address defaults to PMAPI_URL, then " + client.DefaultBaseURL + ".",
	RunE: func(cmd *cobra.Command, args []string) error {
		if boardOpts.projectID == 0 {
			return errors.New("--project is required")
		}

		baseURL := boardOpts.baseURL
		if baseURL == "" {
			baseURL = os.Getenv("PMAPI_URL")
		}
		session := client.NewSession(baseURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		switch {
		case boardOpts.email != "":
			if _, err := session.Login(ctx, boardOpts.email, boardOpts.password); err != nil {
				return err
			}
		case os.Getenv("PMAPI_TOKEN") != "":
			session.Token = os.Getenv("PMAPI_TOKEN")
		default:
			return errors.New("no credentials: pass --email/--password or set PMAPI_TOKEN")
		}

		// Fail before entering the alternate screen when the project is
		// missing or not visible to this user.
		if _, err := session.Project(ctx, boardOpts.projectID); err != nil {
			return err
		}
		return tui.Run(session, boardOpts.projectID)
	},
}

func init() {
	boardCmd.Flags().UintVarP(&boardOpts.projectID, "project", "p", 0, "Project id")
	boardCmd.Flags().StringVar(&boardOpts.baseURL, "url", "", "API base URL")
	boardCmd.Flags().StringVar(&boardOpts.email, "email", "", "Login email")
	boardCmd.Flags().StringVar(&boardOpts.password, "password", "", "Login password")
	rootCmd.AddCommand(boardCmd)
}
