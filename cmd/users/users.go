package users

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/sandaran/internal/config"
)

var (
	cfg    *config.Config
	logger logrus.FieldLogger = logrus.StandardLogger()
)

// Configure hands the resolved configuration and logger to the subcommands.
func Configure(c *config.Config, l logrus.FieldLogger) {
	cfg = c
	if l != nil {
		logger = l
	}
}

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long:  `Commands for provisioning and approving user accounts directly from the server.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().StringVar(&roleFlag, "role", "ADMIN", "Global role: USER, ADMIN or CEO")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")

	approveCmd.Flags().StringVar(&approveEmailFlag, "email", "", "Email address of the account to approve")
	approveCmd.Flags().StringVar(&approveRoleFlag, "role", "USER", "Global role granted on approval")

	UsersCmd.AddCommand(createCmd, approveCmd)
}
