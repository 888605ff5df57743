package subcommands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/config"
)

var (
	initPath  string
	initForce bool
)

// InitCmd writes a config file populated with default values.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with default values",
	Long: "Create a configuration file with default values.\n\n" +
		"Writes every setting with its default to the config file, ready to be " +
		"edited. The file is created in $CATALOG_IMPORT_CONFIG_DIR when set, " +
		"otherwise in ~/.config/catalog-import. An existing file is only " +
		"replaced when --force is given.",
	Example: `  # Create the default config file
  catalog-import config init

  # Create a config file for a second shop
  catalog-import config init --path ./shop-b.yaml

  # Replace an existing config file
  catalog-import config init --force`,
	PreRunE: validateInit,
	RunE:    runInit,
}

func init() {
	InitCmd.Flags().StringVar(&initPath, "path", "", "Where to write the config file (default "+config.DefaultConfigPath()+")")
	InitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}

func validateInit(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg := config.NewDefaultConfig()
	if err := config.Write(&cfg, path, initForce); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%w; use --force to overwrite", err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	return nil
}
