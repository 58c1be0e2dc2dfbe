// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/runtime"
)

// newConfigCommand creates the `modhook config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modhook configuration",
		Long: `Manage modhook configuration.

Configuration is read from the first of:
  - the file given with --config
  - modhook.cue in the working directory
  - the user config file:
      Linux: ~/.config/modhook/config.cue
      macOS: ~/Library/Application Support/modhook/config.cue
      Windows: %APPDATA%\modhook\config.cue

MODHOOK_* environment variables override file values, for example
MODHOOK_LINTER_RUN or MODHOOK_FAIL_FAST.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), "")
			if err != nil {
				return err
			}
			_, err = io.WriteString(app.stdout, config.GenerateCUE(cfg))
			return err
		},
	})

	var (
		force  bool
		global bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Create a default configuration file. Without --global the file is
modhook.cue in the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, global, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&global, "global", false, "write the user config file instead")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx, "")
	if err != nil {
		return err
	}
	source, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		return err
	}

	p := newPalette(app.stdout, cfg.UI.ColorScheme)
	w := app.stdout
	kv := func(indent, key string, value any) {
		fmt.Fprintf(w, "%s%s: %s\n", indent, p.cmd.Render(key), p.success.Render(fmt.Sprint(value)))
	}

	fmt.Fprintln(w, p.title.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source == "" {
		fmt.Fprintf(w, "%s: %s\n", p.cmd.Render("Config file"), p.subtitle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", p.cmd.Render("Config file"), source)
	}
	fmt.Fprintln(w)

	kv("", "markers", strings.Join(cfg.Markers, ", "))
	if len(cfg.Exclude) == 0 {
		fmt.Fprintf(w, "%s: %s\n", p.cmd.Render("exclude"), p.subtitle.Render("(none)"))
	} else {
		kv("", "exclude", strings.Join(cfg.Exclude, ", "))
	}
	kv("", "fail_fast", cfg.FailFast)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", p.cmd.Render("linter"))
	kv("  ", "run", cfg.Linter.Run)
	kv("  ", "runtime", cfg.Linter.Runtime)
	if cfg.Linter.Timeout == "" {
		fmt.Fprintf(w, "  %s: %s\n", p.cmd.Render("timeout"), p.subtitle.Render("(none)"))
	} else {
		kv("  ", "timeout", cfg.Linter.Timeout)
	}
	if len(cfg.Linter.EnvFiles) > 0 {
		kv("  ", "env_files", strings.Join(cfg.Linter.EnvFiles, ", "))
	}
	if len(cfg.Linter.Env) > 0 {
		fmt.Fprintf(w, "  %s:\n", p.cmd.Render("env"))
		for _, line := range runtime.EnvToSlice(cfg.Linter.Env) {
			fmt.Fprintf(w, "    %s\n", p.success.Render(line))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", p.cmd.Render("ui"))
	kv("  ", "color_scheme", cfg.UI.ColorScheme)
	kv("  ", "verbose", cfg.UI.Verbose)

	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	userPath, err := config.UserConfigPath(config.LoadOptions{})
	if err != nil {
		return err
	}
	active, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.configPath})
	if err != nil {
		return err
	}
	if active == "" {
		active = "(none, using defaults)"
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "User config file: %s\n", userPath)
	fmt.Fprintf(app.stdout, "Project config file: %s\n", config.ProjectFileName)
	fmt.Fprintf(app.stdout, "Active config file: %s\n", active)
	return nil
}

func initConfig(app *App, global, force bool) error {
	path := config.ProjectFileName
	if global {
		userPath, err := config.UserConfigPath(config.LoadOptions{})
		if err != nil {
			return err
		}
		path = userPath
	}

	if err := config.WriteFile(path, config.DefaultConfig(), force); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	p := newPalette(app.stdout, config.ColorSchemeAuto)
	_, err := fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", p.success.Render("✓"), path)
	return err
}
