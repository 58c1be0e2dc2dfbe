// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/lint"
	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/internal/runtime"
	"github.com/modhook/modhook/pkg/types"
)

// runOptions are the run-only flags.
type runOptions struct {
	failFast bool
	dryRun   bool
}

func newRunCommand(app *App) *cobra.Command {
	var (
		in   inputFlags
		opts runOptions
	)

	runCmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Run the linter once per module owning a changed file",
		Long: `Run the configured linter once in every module root owning one of the
given files. Roots are linted one at a time, in the order they were first
found, each with the module root as working directory.

Files come from the arguments, from --stdin, or from Git with --staged or
--modified. When no source is given and standard input is piped, the list
is read from it.

The exit status is 0 when every module passes (or no module was found) and
otherwise the exit status of the first failing module.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd.Context(), app, &in, opts, args)
		},
	}

	in.register(runCmd)
	runCmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "stop after the first failing module")
	runCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the modules and the command without running it")

	return runCmd
}

func runLint(ctx context.Context, app *App, in *inputFlags, opts runOptions, args []string) error {
	projectDir, err := in.projectDir(args)
	if err != nil {
		return err
	}
	cfg, err := app.loadConfig(ctx, projectDir)
	if err != nil {
		return err
	}
	ctx = app.withLogger(ctx)

	res, err := app.resolve(ctx, cfg, in, args)
	if err != nil {
		return err
	}

	errPalette := newPalette(app.stderr, cfg.UI.ColorScheme)
	if len(res.roots) == 0 {
		fmt.Fprintln(app.stderr, errPalette.subtitle.Render("No module roots to lint."))
		return nil
	}

	if opts.dryRun {
		return printDryRun(app.stdout, newPalette(app.stdout, cfg.UI.ColorScheme), cfg.Linter, res.roots)
	}

	return lintRoots(ctx, app, cfg, errPalette, res, cfg.FailFast || opts.failFast)
}

// lintRoots runs the linter over res.roots and prints the summary. A failed
// module yields an *ExitError carrying its exit status.
func lintRoots(ctx context.Context, app *App, cfg *config.Config, p palette, res resolution, failFast bool) error {
	rt, err := app.Runtimes.Get(runtime.RuntimeType(cfg.Linter.Runtime))
	if err != nil {
		return err
	}
	timeout, err := cfg.Linter.TimeoutDuration()
	if err != nil {
		return err
	}

	runner, err := lint.NewRunner(lint.Options{
		Command:  cfg.Linter.Run,
		Runtime:  rt,
		BaseDir:  res.baseDir,
		Timeout:  timeout,
		FailFast: failFast,
		Env:      cfg.Linter.Env,
		EnvFiles: cfg.Linter.EnvFiles,
		Stdout:   app.stdout,
		Stderr:   app.stderr,
		OnStart: func(root types.FilesystemPath) {
			fmt.Fprintln(app.stderr, p.title.Render("▸ "+root.String()))
		},
		Clock: app.clock,
	})
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug("linting modules", "count", len(res.roots), "runtime", rt.Name())
	report, err := runner.Run(ctx, res.roots)
	if err != nil {
		return err
	}

	fmt.Fprint(app.stderr, renderSummary(p, report))
	if err := report.Err(); err != nil {
		return &ExitError{Code: report.ExitCode(), Err: err}
	}
	return nil
}

func printDryRun(w io.Writer, p palette, linter config.LinterConfig, roots []types.FilesystemPath) error {
	for _, root := range roots {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", p.title.Render(root.String()), p.subtitle.Render("→"), p.cmd.Render(linter.Run)); err != nil {
			return err
		}
	}
	return nil
}
