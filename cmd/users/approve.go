package users

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/sandaran/cmd/cmdutil"
	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/user"
)

var (
	approveEmailFlag string
	approveRoleFlag  string
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a pending account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if approveEmailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		ctx := cmd.Context()
		bundle, err := cmdutil.NewIAMServiceBundle(ctx, cfg, cmdutil.IAMServiceOptions{Logger: logger})
		if err != nil {
			return err
		}
		defer bundle.Close()

		account, err := bundle.Users.GetByEmail(ctx, approveEmailFlag)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no account with email %q", approveEmailFlag)
		}
		if err != nil {
			return fmt.Errorf("failed to look up account: %w", err)
		}

		role := auth.GlobalRole(strings.ToUpper(approveRoleFlag))
		approved, err := user.NewService(bundle.Users, bundle.Service).Approve(ctx, nil, account.ID, role)
		if err != nil {
			return fmt.Errorf("failed to approve account: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Approved %s as %s\n", approved.Email, approved.Role)
		return nil
	},
}
