// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/internal/watch"
	"github.com/modhook/modhook/pkg/types"
)

// watchOptions are the watch-only flags.
type watchOptions struct {
	debounce time.Duration
	failFast bool
}

func newWatchCommand(app *App) *cobra.Command {
	var (
		in   inputFlags
		opts watchOptions
	)

	watchCmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Lint modules again whenever their files change",
		Long: `Watch a directory tree (the working directory by default) and run the
linter in every module owning a file that changed. Changes are batched until
the tree has been quiet for the debounce period.

Lint failures are reported and watching continues. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := types.FilesystemPath(".")
			if len(args) == 1 {
				dir = types.FilesystemPath(args[0])
			}
			return watchModules(cmd.Context(), app, &in, opts, dir)
		},
	}

	watchCmd.Flags().StringArrayVar(&in.markers, "marker", nil, "manifest file name marking a module root (repeatable, overrides config)")
	watchCmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before linting a batch of changes")
	watchCmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop a batch after the first failing module")

	return watchCmd
}

func watchModules(ctx context.Context, app *App, in *inputFlags, opts watchOptions, dir types.FilesystemPath) error {
	cfg, err := app.loadConfig(ctx, "")
	if err != nil {
		return err
	}
	ctx = app.withTimestampedLogger(ctx)
	logger := logging.FromContext(ctx)

	if _, err := in.markerNames(cfg); err != nil {
		return err
	}

	p := newPalette(app.stderr, cfg.UI.ColorScheme)
	w, err := watch.New(watch.Config{
		BaseDir:  dir,
		Ignore:   cfg.Exclude,
		Debounce: opts.debounce,
		Logger:   logger,
		OnChange: func(ctx context.Context, changed []types.FilesystemPath) error {
			return lintChanged(ctx, app, cfg, in, p, dir, changed, cfg.FailFast || opts.failFast)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stderr, p.subtitle.Render("Watching "+dir.String()+" for changes. Press Ctrl+C to stop."))
	return w.Run(ctx)
}

// lintChanged lints the modules owning changed. Module failures are already
// in the printed summary and do not stop the watch.
func lintChanged(ctx context.Context, app *App, cfg *config.Config, in *inputFlags, p palette, dir types.FilesystemPath, changed []types.FilesystemPath, failFast bool) error {
	roots, err := app.rootsOf(ctx, cfg, in, changed, dir)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		logging.FromContext(ctx).Debug("no module owns the changed files", "files", len(changed))
		return nil
	}

	err = lintRoots(ctx, app, cfg, p, resolution{files: changed, roots: roots, baseDir: dir}, failFast)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
