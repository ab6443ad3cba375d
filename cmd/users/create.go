package users

import (
	"bufio"
	"fmt"
	"net/mail"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terraconstructs/sandaran/cmd/cmdutil"
	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/services/iam"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an active user account",
	Long: `Creates an account that is active immediately with the given global role.
Use it to bootstrap the first administrator.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
		}
		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		role := auth.GlobalRole(strings.ToUpper(roleFlag))
		if !role.Known() || role == auth.RoleNone {
			return fmt.Errorf("invalid role %q: valid roles are USER, ADMIN, CEO", roleFlag)
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}

		ctx := cmd.Context()
		bundle, err := cmdutil.NewIAMServiceBundle(ctx, cfg, cmdutil.IAMServiceOptions{Logger: logger})
		if err != nil {
			return err
		}
		defer bundle.Close()

		user, err := bundle.Service.CreateUser(ctx, iam.CreateUserInput{
			Name:     nameFlag,
			Email:    emailFlag,
			Password: password,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "User created successfully!")
		fmt.Fprintln(out, "----------------------------------------")
		fmt.Fprintf(out, "User ID: %s\n", user.ID)
		fmt.Fprintf(out, "Email: %s\n", user.Email)
		fmt.Fprintf(out, "Name: %s\n", user.Name)
		fmt.Fprintf(out, "Role: %s\n", user.Role)
		fmt.Fprintln(out, "----------------------------------------")
		return nil
	},
}
