package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/ordia/internal/auth"
	"github.com/benvon/ordia/internal/database"
	"github.com/benvon/ordia/internal/models"
	"github.com/spf13/cobra"
)

// userAdmin is the slice of the user repository the commands need
type userAdmin interface {
	List(ctx context.Context) ([]*models.User, error)
	SetActive(ctx context.Context, email string, active bool) (*models.User, error)
}

// NewUsersCmd creates the users command with list, activate and deactivate subcommands.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newSetActiveCmd("activate", true))
	cmd.AddCommand(newSetActiveCmd("deactivate", false))
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *database.DB) error {
				return listUsers(cmd.Context(), cmd.OutOrStdout(), database.NewUserRepository(db))
			})
		},
	}
}

func newSetActiveCmd(use string, active bool) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: strings.ToUpper(use[:1]) + use[1:] + " a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *database.DB) error {
				return setActive(cmd.Context(), cmd.OutOrStdout(), database.NewUserRepository(db), email, active)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the account (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func listUsers(ctx context.Context, w io.Writer, users userAdmin) error {
	list, err := users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "No users registered")
		return nil
	}

	fmt.Fprintln(w, "Registered users:")
	for _, u := range list {
		state := "active"
		if !u.IsActive {
			state = "inactive"
		}
		fmt.Fprintf(w, "  - %s (%s) %s, joined %s\n", u.Email, u.ID, state, u.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func setActive(ctx context.Context, w io.Writer, users userAdmin, email string, active bool) error {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	user, err := users.SetActive(ctx, email, active)
	if err != nil {
		return fmt.Errorf("update %s: %w", email, err)
	}

	state := "activated"
	if !user.IsActive {
		state = "deactivated"
	}
	fmt.Fprintf(w, "User %s %s.\n", user.Email, state)
	return nil
}
