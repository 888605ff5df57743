// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage catalog-import configuration",
	Long: "Manage catalog-import configuration.\n\n" +
		"The config command creates, displays and validates the configuration " +
		"that locates the platform installation and its import endpoint. " +
		"Configuration is stored in a YAML file located at " +
		"~/.config/catalog-import/config.yaml by default.",
}

func init() {
	ConfigCmd.AddCommand(subcommands.InitCmd)
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
