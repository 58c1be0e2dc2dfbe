// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/modhook/modhook/pkg/types"
)

const (
	// RuntimeNative executes the linter binary directly.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual interprets the linter command with the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultLinterCommand is run in every module root unless configured otherwise.
	DefaultLinterCommand = "golangci-lint run ./..."
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode specifies how the linter command is executed.
	// Defined locally to avoid coupling config to internal/runtime;
	// the CLI casts to runtime.RuntimeType at the boundary.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config holds the application configuration.
	Config struct {
		// Markers are the manifest file names that mark a module root.
		Markers []string `json:"markers" mapstructure:"markers"`
		// Exclude lists doublestar globs of changed files to ignore.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
		// FailFast stops after the first failing module.
		FailFast bool `json:"fail_fast" mapstructure:"fail_fast"`
		// Linter configures the per-module command.
		Linter LinterConfig `json:"linter" mapstructure:"linter"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// LinterConfig configures the command run in each module root.
	LinterConfig struct {
		Run      string            `json:"run" mapstructure:"run"`
		Runtime  RuntimeMode       `json:"runtime" mapstructure:"runtime"`
		Timeout  string            `json:"timeout" mapstructure:"timeout"`
		Env      map[string]string `json:"env" mapstructure:"env"`
		EnvFiles []string          `json:"env_files" mapstructure:"env_files"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}

	// InvalidConfigError collects every field error found by Config.Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Markers: []string{string(types.DefaultMarkerName)},
		Exclude: []string{},
		Linter: LinterConfig{
			Run:      DefaultLinterCommand,
			Runtime:  RuntimeNative,
			Env:      map[string]string{},
			EnvFiles: []string{},
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Validate checks every field and returns an *InvalidConfigError listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Markers) == 0 {
		errs = append(errs, errors.New("markers: at least one marker is required"))
	}
	for _, m := range c.Markers {
		if err := types.MarkerName(m).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("markers: %w", err))
		}
	}
	for _, pat := range c.Exclude {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("exclude: invalid glob %q", pat))
		}
	}
	if strings.TrimSpace(c.Linter.Run) == "" {
		errs = append(errs, errors.New("linter.run: command must not be empty"))
	}
	if err := c.Linter.Runtime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("linter.runtime: %w", err))
	}
	if _, err := c.Linter.TimeoutDuration(); err != nil {
		errs = append(errs, fmt.Errorf("linter.timeout: %w", err))
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ui.color_scheme: %w", err))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// MarkerNames returns the configured markers as typed values.
func (c *Config) MarkerNames() ([]types.MarkerName, error) {
	return types.MarkersFromStrings(c.Markers)
}

// TimeoutDuration parses Timeout. An empty value means no limit.
func (l LinterConfig) TimeoutDuration() (time.Duration, error) {
	if l.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(l.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", l.Timeout)
	}
	return d, nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the general sentinel and the specific ones.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns ErrInvalidConfigRuntimeMode so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigRuntimeModeError) Unwrap() error {
	return ErrInvalidConfigRuntimeMode
}

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// Validate returns nil if m is a supported runtime mode.
func (m RuntimeMode) Validate() error {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return &InvalidConfigRuntimeModeError{Value: m}
	}
}

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme so callers can use errors.Is for programmatic detection.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns nil if cs is a supported color scheme.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}
