// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidManifestAttribute is the sentinel error wrapped by InvalidManifestAttributeError.
	ErrInvalidManifestAttribute = errors.New("invalid manifest attribute")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidManifestAttributeError is returned when a manifest attribute name
	// cannot be encoded into a jar manifest. It wraps ErrInvalidManifestAttribute
	// for errors.Is() compatibility.
	InvalidManifestAttributeError struct {
		Name string
	}

	// InvalidConfigError aggregates the validation failure of a whole Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		Cause error
	}

	// UberjarConfig carries assembly defaults. Flags override these per run.
	UberjarConfig struct {
		// LockFilePath is the resolved-dependency lock file. Empty means
		// ujar.lock.cue in the current directory.
		LockFilePath string `mapstructure:"lock_file"`

		// TargetPath is where the output jar is written.
		TargetPath string `mapstructure:"target_path"`

		// CompilePath is the compiled-output directory.
		CompilePath string `mapstructure:"compile_path"`

		// Main is the entry point in human-readable form.
		Main string `mapstructure:"main"`

		// Manifest holds extra manifest attributes, merged over the
		// synthesized ones.
		Manifest map[string]any `mapstructure:"manifest"`
	}

	// UIConfig carries terminal presentation settings.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// Config is the root configuration structure.
	Config struct {
		Uberjar UberjarConfig `mapstructure:"uberjar"`
		UI      UIConfig      `mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("%v: %q (valid: auto, dark, light)", ErrInvalidColorScheme, e.Value)
}

// Unwrap enables errors.Is(err, ErrInvalidColorScheme).
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// Error implements the error interface.
func (e *InvalidManifestAttributeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidManifestAttribute, e.Name)
}

// Unwrap enables errors.Is(err, ErrInvalidManifestAttribute).
func (e *InvalidManifestAttributeError) Unwrap() error {
	return ErrInvalidManifestAttribute
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidConfig, e.Cause)
}

// Unwrap enables errors.Is(err, ErrInvalidConfig).
func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Validate checks that the color scheme is one of the recognized values.
func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: s}
	}
}

// Validate checks constraints the CUE schema cannot express: manifest
// attribute names must survive the "Name: value" wire encoding.
func (c *UberjarConfig) Validate() error {
	for name := range c.Manifest {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" || trimmed != name || strings.ContainsAny(name, ": \r\n") {
			return &InvalidManifestAttributeError{Name: name}
		}
	}
	return nil
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if err := c.UI.ColorScheme.Validate(); err != nil {
		return &InvalidConfigError{Cause: err}
	}
	if err := c.Uberjar.Validate(); err != nil {
		return &InvalidConfigError{Cause: err}
	}
	return nil
}

// DefaultConfig returns the built-in defaults used before any file or flag
// is applied.
func DefaultConfig() *Config {
	return &Config{
		Uberjar: UberjarConfig{
			LockFilePath: "ujar.lock.cue",
			CompilePath:  "",
			TargetPath:   "",
			Main:         "",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
