package app

import (
	"github.com/spf13/cobra"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as JSON, password masked",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := config.DumpConfigJSON(&cfg)
		if err != nil {
			return err
		}

		cmd.Println(out)

		return nil
	},
}
