package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/terraconstructs/sandaran/cmd/users"
	"github.com/terraconstructs/sandaran/internal/config"
	"github.com/terraconstructs/sandaran/internal/telemetry"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sandaranapi",
	Short: "Sandaran API server for construction project management",
	Long: `Sandaran API server tracks construction projects: daily site reports,
project documents, emergency funds and material logistics, with per-project
role based access for field crews, architects and finance staff.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		configFile, _ := flags.GetString("config")
		envFile, _ := flags.GetString("env-file")

		var err error
		cfg, err = config.Load(config.Options{File: configFile, EnvFile: envFile})
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flags override every other source.
		if flags.Changed("db-url") {
			cfg.DatabaseURL, _ = flags.GetString("db-url")
		}
		if flags.Changed("server-addr") {
			cfg.ServerAddr, _ = flags.GetString("server-addr")
		}
		if flags.Changed("server-url") {
			cfg.ServerURL, _ = flags.GetString("server-url")
		}
		if flags.Changed("debug") {
			cfg.Debug, _ = flags.GetBool("debug")
		}

		logger, err = telemetry.NewLogger(cfg.Log, cfg.Debug)
		if err != nil {
			return err
		}
		users.Configure(cfg, logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file (env: CONFIG_FILE)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().String("server-url", "", "Public base URL of the API (env: SERVER_URL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		_ = rootCmd.PersistentFlags().Set("config", file)
	}

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
