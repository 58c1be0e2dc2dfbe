// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/modhook/modhook/internal/changes"
	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/internal/resolver"
	"github.com/modhook/modhook/pkg/types"
)

var errStagedAndModified = errors.New("--staged and --modified cannot be used together")

type (
	// inputFlags are the file-source flags shared by run and roots.
	inputFlags struct {
		stdin    bool
		staged   bool
		modified bool
		markers  []string
	}

	// resolution is the outcome of turning the changed files into module roots.
	resolution struct {
		files []types.FilesystemPath
		roots []types.FilesystemPath
		// baseDir anchors relative roots; empty means the working directory.
		baseDir types.FilesystemPath
	}
)

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.stdin, "stdin", false, "read the file list from standard input")
	cmd.Flags().BoolVar(&f.staged, "staged", false, "use the files staged in the Git index")
	cmd.Flags().BoolVar(&f.modified, "modified", false, "use every changed file in the Git worktree, staged or not")
	cmd.Flags().StringArrayVar(&f.markers, "marker", nil, "manifest file name marking a module root (repeatable, overrides config)")
}

func (f *inputFlags) gitMode() (changes.GitMode, error) {
	switch {
	case f.staged && f.modified:
		return changes.GitModeNone, errStagedAndModified
	case f.staged:
		return changes.GitModeStaged, nil
	case f.modified:
		return changes.GitModeModified, nil
	default:
		return changes.GitModeNone, nil
	}
}

// projectDir returns the directory holding the project modhook.cue: the
// worktree root for Git input, so the file is found from any subdirectory,
// and the working directory otherwise. Conflicting sources are left for
// resolve to report.
func (f *inputFlags) projectDir(args []string) (types.FilesystemPath, error) {
	mode, err := f.gitMode()
	if err != nil || mode == changes.GitModeNone || f.stdin || len(args) > 0 {
		return "", err
	}
	_, root, err := changes.OpenRepo("")
	if err != nil {
		return "", err
	}
	return root, nil
}

// resolve collects the changed files and maps them to module roots.
func (a *App) resolve(ctx context.Context, cfg *config.Config, f *inputFlags, args []string) (resolution, error) {
	mode, err := f.gitMode()
	if err != nil {
		return resolution{}, err
	}

	req := changes.Request{
		Args:      args,
		Stdin:     a.stdin,
		FromStdin: f.stdin || (mode == changes.GitModeNone && len(args) == 0 && isPiped(a.stdin)),
		Git:       mode,
	}
	collected, err := changes.Collect(ctx, req)
	if err != nil {
		return resolution{}, err
	}

	roots, err := a.rootsOf(ctx, cfg, f, collected.Files, collected.BaseDir)
	if err != nil {
		return resolution{}, err
	}

	return resolution{
		files:   collected.Files,
		roots:   roots,
		baseDir: collected.BaseDir,
	}, nil
}

// rootsOf maps files, relative to baseDir when not absolute, to their module
// roots in first-seen order.
func (a *App) rootsOf(ctx context.Context, cfg *config.Config, f *inputFlags, files []types.FilesystemPath, baseDir types.FilesystemPath) ([]types.FilesystemPath, error) {
	markers, err := f.markerNames(cfg)
	if err != nil {
		return nil, err
	}

	opts := []resolver.Option{
		resolver.WithMarkers(markers...),
		resolver.WithExcludes(cfg.Exclude...),
	}
	if baseDir != "" {
		opts = append(opts, resolver.WithBaseDir(baseDir))
	}
	r, err := resolver.New(opts...)
	if err != nil {
		return nil, err
	}

	set, err := r.Resolve(ctx, files)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("resolved module roots",
		"files", len(files), "roots", set.Len(), "markers", markers)

	return set.Roots(), nil
}

func (f *inputFlags) markerNames(cfg *config.Config) ([]types.MarkerName, error) {
	if len(f.markers) > 0 {
		return types.MarkersFromStrings(f.markers)
	}
	return cfg.MarkerNames()
}

// isPiped reports whether r is a file that is not a terminal, such as the
// read end of a pipe or a redirected file.
func isPiped(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || f == nil {
		return false
	}
	return !term.IsTerminal(int(f.Fd()))
}
