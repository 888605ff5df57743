package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/cmdutil"
	"github.com/designcoil/catalog-import/internal/config"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Loads the configuration the import commands would use and checks every " +
		"setting. Returns exit code 0 if valid, 1 if invalid.",
	Example: `  # Validate the configuration
  catalog-import config validate

  # Validate a specific file
  catalog-import --config ./shop-b.yaml config validate`,
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	source := config.ConfigFilePath()
	if source == "" {
		source = "defaults and environment"
	}

	if _, err := config.Get(); err != nil {
		fmt.Fprintf(out, "Configuration validation failed (%s):\n", source)
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintf(out, "  - %v\n", v)
			}
		} else {
			fmt.Fprintf(out, "  %v\n", err)
		}
		return cmdutil.Reported(fmt.Errorf("configuration is invalid"))
	}

	fmt.Fprintf(out, "Configuration is valid: %s\n", source)
	return nil
}
