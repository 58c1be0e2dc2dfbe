// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/hook"
)

// newHookCommand creates the `modhook hook` command tree.
func newHookCommand(app *App) *cobra.Command {
	hookCmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the Git pre-commit hook",
		Long: `Manage the Git pre-commit hook of the current repository.

The installed hook runs 'modhook run --staged', so every commit lints the
modules owning its staged files. core.hooksPath is honored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		force      bool
		executable string
	)
	installCmd := &cobra.Command{
		Use:   "install [-- run flags...]",
		Short: "Install the pre-commit hook",
		Example: `  modhook hook install
  modhook hook install -- --fail-fast`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := hook.Install(hook.Options{
				Executable: executable,
				Args:       args,
				Force:      force,
			})
			if err != nil {
				return err
			}
			p := newPalette(app.stdout, config.ColorSchemeAuto)
			_, err = fmt.Fprintf(app.stdout, "%s Installed pre-commit hook at %s\n", p.success.Render("✓"), path)
			return err
		},
	}
	installCmd.Flags().BoolVar(&force, "force", false, "replace a pre-commit hook not written by modhook")
	installCmd.Flags().StringVar(&executable, "executable", hook.DefaultExecutable, "modhook command the hook calls")
	hookCmd.AddCommand(installCmd)

	hookCmd.AddCommand(&cobra.Command{
		Use:   "uninstall",
		Short: "Remove the pre-commit hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPalette(app.stdout, config.ColorSchemeAuto)
			path, err := hook.Uninstall("")
			if errors.Is(err, hook.ErrNotInstalled) {
				_, err = fmt.Fprintf(app.stdout, "%s No pre-commit hook at %s\n", p.subtitle.Render("-"), path)
				return err
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(app.stdout, "%s Removed pre-commit hook at %s\n", p.success.Render("✓"), path)
			return err
		},
	})

	hookCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the pre-commit hook is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := hook.Path("")
			if err != nil {
				return err
			}
			installed, err := hook.Installed("")
			if err != nil {
				return err
			}
			p := newPalette(app.stdout, config.ColorSchemeAuto)
			if installed {
				_, err = fmt.Fprintf(app.stdout, "%s installed at %s\n", p.success.Render("✓"), path)
				return err
			}
			_, err = fmt.Fprintf(app.stdout, "%s not installed (%s)\n", p.warning.Render("-"), path)
			return err
		},
	})

	return hookCmd
}
