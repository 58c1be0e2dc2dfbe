// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the modhook command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modhook",
		Short: "Run a linter once per changed Go module",
		Long: TitleStyle.Render("modhook") + SubtitleStyle.Render(" - Run a linter once per changed Go module") + `

modhook maps every changed file to the nearest directory holding a module
manifest (go.mod by default), removes duplicates, and runs the configured
linter once in each of those directories. It exits non-zero when any
module fails.

` + SubtitleStyle.Render("Quick Start:") + `
  1. modhook hook install          Install the Git pre-commit hook
  2. git commit                    Lint every module touched by the commit

` + SubtitleStyle.Render("Examples:") + `
  modhook run --staged             Lint modules with staged changes
  modhook run a/x.go b/y.go        Lint the modules owning these files
  git diff --name-only | modhook run
  modhook roots --modified         Print module roots with local changes
  modhook config init              Create modhook.cue in this directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is ./modhook.cue, then the user config)")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetIn(app.stdin)

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newRootsCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newHookCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newVersionCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute builds the production App, runs the command tree and exits with
// the resulting status. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code.AsFailure()))
		}
		os.Exit(1)
	}
}
