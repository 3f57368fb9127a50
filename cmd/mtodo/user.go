package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/repo"
)

func newUserCmd(configPath *string) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "administer user accounts",
	}
	userCmd.AddCommand(
		newUserActionCmd(configPath, "deactivate", "reject all tokens of a user until reactivated",
			func(ctx context.Context, users *repo.UserRepo, email string) error {
				return users.SetActive(ctx, email, false)
			}),
		newUserActionCmd(configPath, "activate", "re-enable a deactivated user",
			func(ctx context.Context, users *repo.UserRepo, email string) error {
				return users.SetActive(ctx, email, true)
			}),
		newUserActionCmd(configPath, "delete", "delete a user and all of their todos",
			func(ctx context.Context, users *repo.UserRepo, email string) error {
				return users.DeleteByEmail(ctx, email)
			}),
	)
	return userCmd
}

func newUserActionCmd(configPath *string, use, short string,
	action func(ctx context.Context, users *repo.UserRepo, email string) error) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			ctx := cmd.Context()
			_, conn, err := bootstrap(ctx, *configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := action(ctx, repo.NewUserRepo(conn), email); err != nil {
				return fmt.Errorf("%s user %s: %w", use, email, err)
			}
			logutil.GetLogger(ctx).Info("user updated", zap.String("action", use), zap.String("email", email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}
