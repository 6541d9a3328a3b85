package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/dinoauth/internal/common"
	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/auth"
	"github.com/dmitrijs2005/dinoauth/internal/server/config"
	"github.com/dmitrijs2005/dinoauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dinoauth/internal/server/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// openDirectory is a seam for tests.
var openDirectory = repomanager.OpenDirectory

type userOptions struct {
	database string
	cost     int
}

// NewUserCmd creates the user subcommand tree.
func NewUserCmd() *cobra.Command {
	opts := &userOptions{}

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users in the directory database",
	}
	cmd.PersistentFlags().StringVar(&opts.database, "database", os.Getenv("DATABASE_URL"), "directory DSN (defaults to $DATABASE_URL)")
	cmd.PersistentFlags().IntVar(&opts.cost, "cost", config.DefaultBcryptCost, "bcrypt cost for new passwords")

	cmd.AddCommand(newUserAddCmd(opts))
	cmd.AddCommand(newUserDeleteCmd(opts))
	cmd.AddCommand(newUserListCmd(opts))

	return cmd
}

// withUserService opens the directory, runs fn against a UserService and
// closes the database afterwards.
func withUserService(cmd *cobra.Command, opts *userOptions, fn func(ctx context.Context, s *services.UserService) error) error {
	if opts.database == "" {
		return fmt.Errorf("%w: database DSN is required (DATABASE_URL or --database)", common.ErrInvalidConfig)
	}

	ctx := cmd.Context()

	repo, db, err := openDirectory(ctx, opts.database)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer func(db *sql.DB) {
		if db != nil {
			_ = db.Close()
		}
	}(db)

	hasher, err := auth.NewPasswordHasher(opts.cost, 1)
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), "error")
	return fn(ctx, services.NewUserService(repo, hasher, logger))
}

func newUserAddCmd(opts *userOptions) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new user (password is prompted)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := getPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			return withUserService(cmd, opts, func(ctx context.Context, s *services.UserService) error {
				u, err := s.Register(ctx, name, email, string(password))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.ID.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newUserDeleteCmd(opts *userOptions) *cobra.Command {
	var rawID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user by id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("%w: invalid id %q", common.ErrorValidation, rawID)
			}
			return withUserService(cmd, opts, func(ctx context.Context, s *services.UserService) error {
				if err := s.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rawID, "id", "", "user id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newUserListCmd(opts *userOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withUserService(cmd, opts, func(ctx context.Context, s *services.UserService) error {
				list, err := s.List(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tCREATED")
				for _, u := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}
