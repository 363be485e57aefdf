package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"household-budget-backend/internal/models"
	"household-budget-backend/internal/services/audit"
	"household-budget-backend/internal/services/budget"
	"household-budget-backend/internal/services/reporting"
)

func (e *env) budgetService() *budget.Service {
	return budget.NewService(e.app.Repos, e.app.Procedures, audit.NewRecorder(e.app.Repos))
}

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// app.New already migrated
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newCloneCommand(e *env) *cobra.Command {
	var user string
	var year, month int

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Start a month, copying the plan of the most recent earlier month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := userContext(cmd, user)
			if err != nil {
				return err
			}
			m, err := e.budgetService().StartMonth(ctx, year, month)
			if err != nil {
				return fmt.Errorf("start %04d-%02d: %w", year, month, err)
			}
			return writeJSON(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().IntVar(&year, "year", 0, "target year (required)")
	cmd.Flags().IntVar(&month, "month", 0, "target month 1-12 (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func newCloseCommand(e *env) *cobra.Command {
	var user, monthID string
	var confirm bool

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a budget month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := userContext(cmd, user)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(monthID)
			if err != nil {
				return fmt.Errorf("invalid --id %q: %w", monthID, err)
			}
			svc := e.budgetService()
			if !confirm {
				summary, err := svc.CloseSummary(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "pass --confirm to close; summary follows")
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			m, err := svc.Close(ctx, id, true)
			if err != nil {
				return fmt.Errorf("close month %s: %w", id, err)
			}
			return writeJSON(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().StringVar(&monthID, "id", "", "budget month id (required)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "actually close the month")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newReportCommand(e *env) *cobra.Command {
	var user, monthID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the planned versus actual report of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := userContext(cmd, user)
			if err != nil {
				return err
			}
			id, err := uuid.Parse(monthID)
			if err != nil {
				return fmt.Errorf("invalid --month-id %q: %w", monthID, err)
			}
			rep, err := reporting.NewService(e.app.Repos).MonthReport(ctx, id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().StringVar(&monthID, "month-id", "", "budget month id (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("month-id")
	return cmd
}

// grant-role seeds roles for the local procedure backend only.
func newGrantRoleCommand(e *env) *cobra.Command {
	var user, role string

	cmd := &cobra.Command{
		Use:   "grant-role",
		Short: "Grant a role to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid --user %q: %w", user, err)
			}
			r := models.AppRole(role)
			if r != models.RoleAdmin && r != models.RoleUser {
				return fmt.Errorf("invalid --role %q: must be admin or user", role)
			}
			granter, ok := e.app.Procedures.(interface {
				GrantRole(ctx context.Context, userID uuid.UUID, role models.AppRole) error
			})
			if !ok {
				return fmt.Errorf("roles are managed by the remote store")
			}
			if err := granter.GrantRole(cmd.Context(), userID, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", r, userID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id (required)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "role to grant")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
