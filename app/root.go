// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/logger"
)

var (
	configPath string // directory holding main.toml

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "go-roles-admin",
		Short: "GoRoles-Admin manages a hierarchy of roles inheriting each other",
		Long: `GoRoles-Admin manages a hierarchy of roles where every role inherits
the permissions of the roles granted to it. It serves an admin API and offers
the same operations on the command line.`,
		Args:              cobra.OnlyValidArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory of main.toml")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
