// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/pkg/cueutil"
	"github.com/modhook/modhook/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "modhook"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the project-local config file looked up in the
	// working directory.
	ProjectFileName = "modhook.cue"
	// EnvPrefix prefixes environment variable overrides (MODHOOK_LINTER_RUN).
	EnvPrefix = "MODHOOK"
)

// ErrConfigExists is returned by WriteFile when the target exists and
// overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the modhook configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if dir := configDirOverride(); dir != "" {
		return dir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// UserConfigPath returns the path of the user config file.
func UserConfigPath(opts LoadOptions) (string, error) {
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// ResolvePath returns the config file that Load would read, or "" when no
// file exists and only defaults apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'modhook config init' to create one").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	local := filepath.Join(opts.WorkDir, ProjectFileName)
	if fileExists(local) {
		return local, nil
	}

	userPath, err := UserConfigPath(opts)
	if err != nil {
		return "", err
	}
	if fileExists(userPath) {
		return userPath, nil
	}

	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	var linterEnv map[string]string
	if resolvedPath != "" {
		if linterEnv, err = loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'modhook config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Linter.Env = linterEnv
	if cfg.Linter.Env == nil {
		cfg.Linter.Env = map[string]string{}
	}

	// Environment overrides bypass the CUE schema, so validate the merged result.
	if err := cfg.Validate(); err != nil {
		ec := issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Check MODHOOK_* environment variables for typos")
		if resolvedPath != "" {
			ec.WithResource(resolvedPath)
		}
		return nil, "", ec.Wrap(err).BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("markers", defaults.Markers)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("fail_fast", defaults.FailFast)
	v.SetDefault("linter.run", defaults.Linter.Run)
	v.SetDefault("linter.runtime", string(defaults.Linter.Runtime))
	v.SetDefault("linter.timeout", defaults.Linter.Timeout)
	v.SetDefault("linter.env_files", defaults.Linter.EnvFiles)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. The file decodes to a map so that only
// the keys it sets override the defaults.
//
// linter.env is returned separately: Viper lower-cases map keys, which would
// corrupt environment variable names.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecodeString[map[string]any](configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}
	configMap := *result.Value

	var env map[string]string
	if linter, ok := configMap["linter"].(map[string]any); ok {
		if raw, ok := linter["env"].(map[string]any); ok {
			env = make(map[string]string, len(raw))
			for k, val := range raw {
				env[k] = fmt.Sprint(val)
			}
		}
		delete(linter, "env")
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return env, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteFile writes cfg as CUE to path, creating parent directories. An
// existing file is only replaced when force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// modhook configuration file\n\n")

	sb.WriteString("// File names that mark a module root.\n")
	sb.WriteString(fmt.Sprintf("markers: %s\n", cueList(cfg.Markers)))

	if len(cfg.Exclude) > 0 {
		sb.WriteString(fmt.Sprintf("exclude: %s\n", cueList(cfg.Exclude)))
	}

	sb.WriteString(fmt.Sprintf("fail_fast: %v\n", cfg.FailFast))

	// Linter config
	sb.WriteString("\nlinter: {\n")
	sb.WriteString(fmt.Sprintf("\trun:     %q\n", cfg.Linter.Run))
	sb.WriteString(fmt.Sprintf("\truntime: %q\n", cfg.Linter.Runtime))
	if cfg.Linter.Timeout != "" {
		sb.WriteString(fmt.Sprintf("\ttimeout: %q\n", cfg.Linter.Timeout))
	}
	if len(cfg.Linter.Env) > 0 {
		sb.WriteString("\tenv: {\n")
		for _, k := range slices.Sorted(maps.Keys(cfg.Linter.Env)) {
			sb.WriteString(fmt.Sprintf("\t\t%q: %q\n", k, cfg.Linter.Env[k]))
		}
		sb.WriteString("\t}\n")
	}
	if len(cfg.Linter.EnvFiles) > 0 {
		sb.WriteString(fmt.Sprintf("\tenv_files: %s\n", cueList(cfg.Linter.EnvFiles)))
	}
	sb.WriteString("}\n")

	// UI config
	sb.WriteString("\nui: {\n")
	sb.WriteString(fmt.Sprintf("\tcolor_scheme: %q\n", cfg.UI.ColorScheme))
	sb.WriteString(fmt.Sprintf("\tverbose:      %v\n", cfg.UI.Verbose))
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
