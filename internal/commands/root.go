// Package commands implements budgetctl, the operator CLI.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"household-budget-backend/internal/app"
	"household-budget-backend/internal/auth"
	"household-budget-backend/internal/config"
	"household-budget-backend/internal/logger"
)

// opener builds the application for a command. Tests swap it.
type opener func(cfg *config.Config) (*app.App, error)

type env struct {
	open opener
	app  *app.App
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(app.New)
}

func newRootCommand(open opener) *cobra.Command {
	e := &env{open: open}

	rootCmd := &cobra.Command{
		Use:   "budgetctl",
		Short: "Household budget operations",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat))

			a, err := e.open(cfg)
			if err != nil {
				return err
			}
			e.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.app == nil {
				return nil
			}
			return e.app.Close()
		},
	}

	rootCmd.AddCommand(
		newMigrateCommand(e),
		newCloneCommand(e),
		newCloseCommand(e),
		newReportCommand(e),
		newGrantRoleCommand(e),
	)
	return rootCmd
}

// userContext acts as the given user, the way the HTTP identity middleware does.
func userContext(cmd *cobra.Command, rawID string) (context.Context, error) {
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid --user %q: %w", rawID, err)
	}
	return auth.WithUser(cmd.Context(), userID), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
