// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootsCommand(app *App) *cobra.Command {
	var in inputFlags

	rootsCmd := &cobra.Command{
		Use:   "roots [files...]",
		Short: "Print the module roots owning the given files",
		Long: `Print the module roots owning the given files, one per line, in the
order they were first found. Files outside every module are ignored.

Paths read from Git are relative to the worktree root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			projectDir, err := in.projectDir(args)
			if err != nil {
				return err
			}
			cfg, err := app.loadConfig(ctx, projectDir)
			if err != nil {
				return err
			}
			ctx = app.withLogger(ctx)

			res, err := app.resolve(ctx, cfg, &in, args)
			if err != nil {
				return err
			}
			for _, root := range res.roots {
				if _, err := fmt.Fprintln(app.stdout, root); err != nil {
					return err
				}
			}
			return nil
		},
	}
	in.register(rootsCmd)

	return rootsCmd
}
