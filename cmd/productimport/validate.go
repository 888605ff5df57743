package productimport

import (
	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/importer"
)

// ValidateCmd validates a file without importing it.
var ValidateCmd = NewValidateCmd()

// NewValidateCmd returns a fresh product:import:validate command.
func NewValidateCmd() *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   importer.ValidateCommand,
		Short: "Validate an import file using the platform's native validation",
		Long: "Validate an import file using the platform's native validation.\n\n" +
			"The file is staged exactly as product:import:run would stage it and checked " +
			"by the platform without importing anything. Errors are grouped by message " +
			"with the affected row numbers. The command exits zero only when validation passes.",
		Example: `  # Validate a product CSV
  catalog-import product:import:validate --entity=catalog_product --file=products.csv

  # Validate a semicolon-separated file
  catalog-import product:import:validate --entity=catalog_product --file=products.csv --field-separator=";"`,
		Args:    cobra.NoArgs,
		PreRunE: validateImport,
	}
	flags.register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		defer s.cleanup()

		return importer.NewValidator(s.workflow).Validate(cmd.Context(), importer.Request{
			Options:    flags.options(cmd),
			ReportFile: flags.reportFile,
		})
	}

	return cmd
}
