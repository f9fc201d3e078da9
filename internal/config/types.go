// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"importmap-cli/pkg/importmap"
	"importmap-cli/pkg/urlutil"
)

const (
	// OutputText prints a human-readable listing.
	OutputText OutputFormat = "text"
	// OutputJSON prints the parse result as ordered JSON.
	OutputJSON OutputFormat = "json"
	// OutputTOML prints the parse result as TOML.
	OutputTOML OutputFormat = "toml"
	// OutputCUE prints the parse result as CUE.
	OutputCUE OutputFormat = "cue"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBaseURL is returned when the configured base URL is not absolute.
	ErrInvalidBaseURL = errors.New("invalid base URL")
	// ErrInvalidDocumentSize is returned when max_document_size is not positive.
	ErrInvalidDocumentSize = errors.New("invalid max document size")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// OutputFormat selects the encoding of parse results.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidBaseURLError is returned when base_url is set but does not parse
	// as an absolute URL.
	InvalidBaseURLError struct {
		Value string
		Err   error
	}

	// InvalidConfigError collects the field errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// BaseURL is used when a command gets no --base-url. Empty means the
		// document's own file URL.
		BaseURL string `json:"base_url" mapstructure:"base_url"`
		// Output is the default encoding of `importmap parse`.
		Output OutputFormat `json:"output" mapstructure:"output"`
		// WarningsAsErrors turns warnings into exit code 2.
		WarningsAsErrors bool `json:"warnings_as_errors" mapstructure:"warnings_as_errors"`
		// ExpandRegistryPrefixes adds "name/" entries for npm: and jsr: targets.
		ExpandRegistryPrefixes bool `json:"expand_registry_prefixes" mapstructure:"expand_registry_prefixes"`
		// MaxDocumentSize is the largest accepted document in bytes.
		MaxDocumentSize int64 `json:"max_document_size" mapstructure:"max_document_size"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Output:          OutputText,
		MaxDocumentSize: importmap.DefaultMaxSize,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate returns an error if the OutputFormat is not one of the defined formats.
func (f OutputFormat) Validate() error {
	switch f {
	case OutputText, OutputJSON, OutputTOML, OutputCUE:
		return nil
	default:
		return &InvalidOutputFormatError{Value: f}
	}
}

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, toml, cue)", e.Value)
}

// Unwrap returns ErrInvalidOutputFormat for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// Validate returns an error if the ColorScheme is not one of the defined schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (e *InvalidBaseURLError) Error() string {
	return fmt.Sprintf("invalid base URL %q: %v", e.Value, e.Err)
}

func (e *InvalidBaseURLError) Unwrap() []error { return []error{ErrInvalidBaseURL, e.Err} }

// Validate checks every field of the Config and reports all failures at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) != "" {
		if _, err := urlutil.Parse(c.BaseURL); err != nil {
			errs = append(errs, &InvalidBaseURLError{Value: c.BaseURL, Err: err})
		}
	}
	if err := c.Output.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDocumentSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidDocumentSize, c.MaxDocumentSize))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return fmt.Sprintf("invalid config: %v", e.FieldErrors[0])
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig and the field errors for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
