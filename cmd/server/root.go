package main

import (
	"github.com/spf13/cobra"

	"github.com/sudo-init-do/userhub/internal/config"
)

const serviceName = "userhub"

// NewRootCmd creates the root command for the userhub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "userhub",
		Short:        "userhub - user accounts and authentication API",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "YAML config file path")
	cmd.PersistentFlags().String("env-file", ".env", "dotenv file path (ignored when missing)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads the layered configuration for cmd and validates it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      flags,
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
