// Package importconfig maps flat command-line options onto the configuration
// shape the platform import pipeline expects.
package importconfig

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Behavior is the import semantics requested for the run.
type Behavior string

// Behavior modes understood by the platform.
const (
	BehaviorAppend    Behavior = "append"
	BehaviorAddUpdate Behavior = "add_update"
	BehaviorReplace   Behavior = "replace"
	BehaviorDelete    Behavior = "delete"
)

// ValidationStrategy controls whether validation stops on the first error or
// tolerates errors up to the allowed count.
type ValidationStrategy string

// Validation strategies understood by the platform.
const (
	StrategyStopOnError ValidationStrategy = "validation-stop-on-errors"
	StrategySkipErrors  ValidationStrategy = "validation-skip-errors"
)

// Option names shared by the command flags and the configuration bag.
const (
	OptEntity                 = "entity"
	OptFile                   = "file"
	OptBehavior               = "behavior"
	OptValidationStrategy     = "validation-strategy"
	OptAllowedErrorCount      = "allowed-error-count"
	OptFieldSeparator         = "field-separator"
	OptMultipleValueSeparator = "multiple-value-separator"
	OptEnclosure              = "enclosure"
	OptFieldsEnclosure        = "fields-enclosure"
	OptImagesFileDir          = "images-file-dir"
	OptLocale                 = "locale"
)

// Default option values.
const (
	DefaultBehavior               = BehaviorAppend
	DefaultValidationStrategy     = StrategyStopOnError
	DefaultAllowedErrorCount      = 10
	DefaultFieldSeparator         = ","
	DefaultMultipleValueSeparator = ","
	DefaultEnclosure              = `"`
)

var (
	// ErrInvalidOption is returned when an option value cannot be used at all.
	ErrInvalidOption = errors.New("invalid import option")

	// ErrEnclosureConflict is returned when --fields-enclosure is combined with a
	// custom enclosure character.
	ErrEnclosureConflict = errors.New("--fields-enclosure cannot be combined with a custom --enclosure")
)

// Options is the flat set of named values collected from the command line.
// Optional values are pointers so "not provided" stays distinct from "empty".
type Options struct {
	Entity                 string
	File                   string
	Behavior               string
	ValidationStrategy     string
	AllowedErrorCount      string
	FieldSeparator         string
	MultipleValueSeparator string
	Enclosure              string
	FieldsEnclosure        bool
	ImagesFileDir          *string
	Locale                 *string
}

// ImportConfiguration is the immutable value handed to the pipeline.
// Behavior and ValidationStrategy are not checked here; the pipeline rejects
// values it does not recognize.
type ImportConfiguration struct {
	entity                 string
	behavior               Behavior
	validationStrategy     ValidationStrategy
	allowedErrorCount      int
	fieldSeparator         string
	multipleValueSeparator string
	enclosure              string
	fieldsEnclosure        bool
	imagesFileDir          *string
	locale                 *string
}

// Entity returns the entity type code, e.g. catalog_product.
func (c ImportConfiguration) Entity() string { return c.entity }

// Behavior returns the requested behavior mode.
func (c ImportConfiguration) Behavior() Behavior { return c.behavior }

// ValidationStrategy returns the requested validation strategy.
func (c ImportConfiguration) ValidationStrategy() ValidationStrategy { return c.validationStrategy }

// AllowedErrorCount returns the error tolerance for skip-errors validation.
func (c ImportConfiguration) AllowedErrorCount() int { return c.allowedErrorCount }

// FieldSeparator returns the column delimiter.
func (c ImportConfiguration) FieldSeparator() string { return c.fieldSeparator }

// MultipleValueSeparator returns the separator used inside multi-value cells.
func (c ImportConfiguration) MultipleValueSeparator() string { return c.multipleValueSeparator }

// Enclosure returns the quoting character handed to the source adapter.
func (c ImportConfiguration) Enclosure() string { return c.enclosure }

// FieldsEnclosure reports whether all fields are declared as enclosed.
func (c ImportConfiguration) FieldsEnclosure() bool { return c.fieldsEnclosure }

// ImagesFileDir returns the image directory and whether it was provided.
func (c ImportConfiguration) ImagesFileDir() (string, bool) {
	if c.imagesFileDir == nil {
		return "", false
	}
	return *c.imagesFileDir, true
}

// Locale returns the locale tag and whether it was provided.
func (c ImportConfiguration) Locale() (string, bool) {
	if c.locale == nil {
		return "", false
	}
	return *c.locale, true
}

// Keys of the configuration bag consumed by the pipeline.
const (
	KeyEntity                 = "entity"
	KeyBehavior               = "behavior"
	KeyValidationStrategy     = "validation_strategy"
	KeyAllowedErrorCount      = "allowed_error_count"
	KeyFieldSeparator         = "_import_field_separator"
	KeyMultipleValueSeparator = "_import_multiple_value_separator"
	KeyFieldsEnclosure        = "fields_enclosure"
	KeyImagesFileDir          = "import_images_file_dir"
	KeyLocale                 = "locale"
)

// Bag returns the configuration keyed the way the pipeline expects it.
// Optional keys are absent, not empty, when they were not provided.
func (c ImportConfiguration) Bag() map[string]any {
	enclosed := 0
	if c.fieldsEnclosure {
		enclosed = 1
	}

	bag := map[string]any{
		KeyEntity:                 c.entity,
		KeyBehavior:               string(c.behavior),
		KeyValidationStrategy:     string(c.validationStrategy),
		KeyAllowedErrorCount:      c.allowedErrorCount,
		KeyFieldSeparator:         c.fieldSeparator,
		KeyMultipleValueSeparator: c.multipleValueSeparator,
		KeyFieldsEnclosure:        enclosed,
	}
	if c.imagesFileDir != nil {
		bag[KeyImagesFileDir] = *c.imagesFileDir
	}
	if c.locale != nil {
		bag[KeyLocale] = *c.locale
	}
	return bag
}

// Build turns Options into an ImportConfiguration, applying defaults to unset values.
func Build(opts Options) (ImportConfiguration, error) {
	if opts.Entity == "" {
		return ImportConfiguration{}, fmt.Errorf("%w: --%s is required", ErrInvalidOption, OptEntity)
	}

	cfg := ImportConfiguration{
		entity:                 opts.Entity,
		behavior:               Behavior(orDefault(opts.Behavior, string(DefaultBehavior))),
		validationStrategy:     ValidationStrategy(orDefault(opts.ValidationStrategy, string(DefaultValidationStrategy))),
		allowedErrorCount:      DefaultAllowedErrorCount,
		fieldSeparator:         orDefault(opts.FieldSeparator, DefaultFieldSeparator),
		multipleValueSeparator: orDefault(opts.MultipleValueSeparator, DefaultMultipleValueSeparator),
		enclosure:              orDefault(opts.Enclosure, DefaultEnclosure),
		fieldsEnclosure:        opts.FieldsEnclosure,
		imagesFileDir:          cloneString(opts.ImagesFileDir),
		locale:                 cloneString(opts.Locale),
	}

	if opts.AllowedErrorCount != "" {
		n, err := strconv.Atoi(opts.AllowedErrorCount)
		if err != nil || n < 0 {
			return ImportConfiguration{}, fmt.Errorf("%w: --%s must be a non-negative integer, got %q",
				ErrInvalidOption, OptAllowedErrorCount, opts.AllowedErrorCount)
		}
		cfg.allowedErrorCount = n
	}

	// Checked in flag order so the first invalid flag is always the one reported.
	chars := []struct {
		name  string
		value string
	}{
		{OptFieldSeparator, cfg.fieldSeparator},
		{OptMultipleValueSeparator, cfg.multipleValueSeparator},
		{OptEnclosure, cfg.enclosure},
	}
	for _, c := range chars {
		if utf8.RuneCountInString(c.value) != 1 {
			return ImportConfiguration{}, fmt.Errorf("%w: --%s must be a single character, got %q",
				ErrInvalidOption, c.name, c.value)
		}
	}

	if cfg.fieldsEnclosure && cfg.enclosure != DefaultEnclosure {
		return ImportConfiguration{}, ErrEnclosureConflict
	}

	return cfg, nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
