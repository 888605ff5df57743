package productimport

import (
	"github.com/spf13/cobra"

	"github.com/designcoil/catalog-import/internal/importconfig"
)

// importFlags holds the option values shared by both import commands.
type importFlags struct {
	entity                 string
	file                   string
	behavior               string
	validationStrategy     string
	allowedErrorCount      string
	fieldSeparator         string
	multipleValueSeparator string
	enclosure              string
	fieldsEnclosure        bool
	imagesFileDir          string
	locale                 string
	reportFile             string
}

func (f *importFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()

	fs.StringVar(&f.entity, importconfig.OptEntity, "",
		"Entity type code (e.g. catalog_product)")
	fs.StringVar(&f.file, importconfig.OptFile, "",
		"Path to the import file, relative to the platform root, absolute, or gs://bucket/object")
	fs.StringVar(&f.behavior, importconfig.OptBehavior, string(importconfig.DefaultBehavior),
		"Import behavior: append, add_update, replace or delete")
	fs.StringVar(&f.validationStrategy, importconfig.OptValidationStrategy, string(importconfig.DefaultValidationStrategy),
		"Validation strategy: validation-stop-on-errors or validation-skip-errors")
	fs.StringVar(&f.allowedErrorCount, importconfig.OptAllowedErrorCount, "10",
		"Number of errors tolerated before validation fails")
	fs.StringVar(&f.fieldSeparator, importconfig.OptFieldSeparator, importconfig.DefaultFieldSeparator,
		"Field separator character")
	fs.StringVar(&f.multipleValueSeparator, importconfig.OptMultipleValueSeparator, importconfig.DefaultMultipleValueSeparator,
		"Separator for multiple values within one field")
	fs.StringVar(&f.enclosure, importconfig.OptEnclosure, importconfig.DefaultEnclosure,
		"Field enclosure character")
	fs.BoolVar(&f.fieldsEnclosure, importconfig.OptFieldsEnclosure, false,
		"Treat every field as enclosed (cannot be combined with a custom --enclosure)")
	fs.StringVar(&f.imagesFileDir, importconfig.OptImagesFileDir, "",
		"Directory containing product images, relative to the platform media import dir")
	fs.StringVar(&f.locale, importconfig.OptLocale, "",
		"Locale of the import data (e.g. en_US)")
	fs.StringVar(&f.reportFile, "report-file", "",
		"Write a YAML (.yaml/.yml) or JSON (.json) report of the outcome to this path")
}

// options converts flag values to builder options. Optional values that were
// not passed on the command line stay nil.
func (f *importFlags) options(cmd *cobra.Command) importconfig.Options {
	opts := importconfig.Options{
		Entity:                 f.entity,
		File:                   f.file,
		Behavior:               f.behavior,
		ValidationStrategy:     f.validationStrategy,
		AllowedErrorCount:      f.allowedErrorCount,
		FieldSeparator:         f.fieldSeparator,
		MultipleValueSeparator: f.multipleValueSeparator,
		Enclosure:              f.enclosure,
		FieldsEnclosure:        f.fieldsEnclosure,
	}
	if cmd.Flags().Changed(importconfig.OptImagesFileDir) {
		v := f.imagesFileDir
		opts.ImagesFileDir = &v
	}
	if cmd.Flags().Changed(importconfig.OptLocale) {
		v := f.locale
		opts.Locale = &v
	}
	return opts
}
