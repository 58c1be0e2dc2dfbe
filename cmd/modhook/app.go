// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/internal/lint"
	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/internal/runtime"
	"github.com/modhook/modhook/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration, runtimes and the standard
	// streams through it.
	App struct {
		Config   config.Provider
		Runtimes *runtime.Registry
		clock    lint.Clock
		stdout   io.Writer
		stderr   io.Writer
		stdin    io.Reader

		// Set from persistent flags when the root command parses them.
		configPath string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Runtimes *runtime.Registry
		// Clock times linter runs. Tests use a fixed clock for stable summaries.
		Clock  lint.Clock
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runtimes == nil {
		deps.Runtimes = runtime.DefaultRegistry()
	}

	return &App{
		Config:   deps.Config,
		Runtimes: deps.Runtimes,
		clock:    deps.Clock,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		stdin:    deps.Stdin,
	}
}

// loadConfig loads the configuration honoring --config and folds ui.verbose
// into the verbose flag. projectDir is where modhook.cue is looked up; empty
// means the working directory.
func (a *App) loadConfig(ctx context.Context, projectDir types.FilesystemPath) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.configPath,
		WorkDir:        projectDir.String(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose {
		a.verbose = true
	}
	return cfg, nil
}

// withLogger attaches the stderr logger to ctx.
func (a *App) withLogger(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, logging.New(a.stderr, logging.Options{Verbose: a.verbose}))
}

// withTimestampedLogger is withLogger for long-running commands, whose log
// lines are read after the fact.
func (a *App) withTimestampedLogger(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, logging.New(a.stderr, logging.Options{Verbose: a.verbose, Timestamps: true}))
}

// renderError is the fang error handler. Actionable errors are printed with
// their suggestions; everything else falls back to fang's rendering.
func (a *App) renderError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	var failure *lint.FailureError
	if errors.As(err, &ae) || errors.As(err, &failure) {
		p := newPalette(w, config.ColorSchemeAuto)
		fmt.Fprintln(w, p.failure.Render("Error:")+" "+formatErrorForDisplay(err, a.verbose))
		return
	}

	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
