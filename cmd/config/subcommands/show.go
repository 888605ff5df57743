package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/config"
)

var showRaw bool

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the effective configuration with defaults, config file values and " +
		"CATALOG_IMPORT_* environment overrides applied. Use --raw to print the " +
		"loaded config file as written.",
	Example: `  # Show effective configuration
  catalog-import config show

  # Show the config file as written
  catalog-import config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show the loaded config file instead of the effective configuration")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := config.ConfigFilePath()

	if showRaw {
		if path == "" {
			fmt.Fprintln(out, "# No configuration file loaded")
			fmt.Fprintf(out, "# Default location: %s\n", config.DefaultConfigPath())
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file; %w", err)
		}
		fmt.Fprintf(out, "# Config file: %s\n", path)
		fmt.Fprint(out, string(data))
		return nil
	}

	cfg, err := config.Get()
	if err != nil {
		return err
	}
	data, err := config.Render(cfg)
	if err != nil {
		return err
	}

	if path == "" {
		path = "none (defaults and environment)"
	}
	fmt.Fprintln(out, "# Effective configuration")
	fmt.Fprintf(out, "# Config file: %s\n", path)
	fmt.Fprint(out, string(data))
	return nil
}
