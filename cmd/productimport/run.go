// Package productimport implements the product:import:run and
// product:import:validate commands.
package productimport

import (
	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/importer"
)

// RunCmd imports a file through the platform's import pipeline.
var RunCmd = NewRunCmd()

// NewRunCmd returns a fresh product:import:run command.
func NewRunCmd() *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   importer.RunCommand,
		Short: "Run an import through the platform's native import pipeline",
		Long: "Run an import through the platform's native import pipeline.\n\n" +
			"The file is staged into the platform's import directory, validated, and " +
			"imported batch by batch while a progress bar tracks fetched batches. " +
			"Affected indexes are invalidated after a successful import. " +
			"The command exits non-zero when validation, import or index invalidation fails.",
		Example: `  # Append products from a CSV relative to the platform root
  catalog-import product:import:run --entity=catalog_product --file=var/import/products.csv

  # Update existing products, tolerating up to 50 invalid rows
  catalog-import product:import:run --entity=catalog_product --file=/data/products.csv \
    --behavior=add_update --validation-strategy=validation-skip-errors --allowed-error-count=50

  # Import from Google Cloud Storage and write a JSON report
  catalog-import product:import:run --entity=catalog_product --file=gs://feeds/products.csv \
    --report-file=reports/products.json`,
		Args:    cobra.NoArgs,
		PreRunE: validateImport,
	}
	flags.register(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.Context(), cmd.OutOrStdout(), true)
		if err != nil {
			return err
		}
		defer s.cleanup()

		return importer.NewRunner(s.workflow).Run(cmd.Context(), importer.Request{
			Options:    flags.options(cmd),
			ReportFile: flags.reportFile,
		})
	}

	return cmd
}

func validateImport(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	return nil
}
