// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-git/go-git/v5"

	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

// OpenRepo opens the Git repository containing dir, searching parent
// directories for the .git entry. It returns the repository and the absolute
// worktree root.
func OpenRepo(dir types.FilesystemPath) (*git.Repository, types.FilesystemPath, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := fspath.Abs(dir)
	if err != nil {
		return nil, "", err
	}

	repo, err := git.PlainOpenWithOptions(string(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("open git repository").
			WithResource(abs.String())
		if errors.Is(err, git.ErrRepositoryNotExists) {
			ec.WithSuggestions(
				"Run modhook inside a Git worktree",
				"Or pass the changed files as arguments or with --stdin",
			)
		}
		return nil, "", ec.Wrap(err).BuildError()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("open git worktree").
			WithResource(abs.String()).
			WithSuggestion("Bare repositories have no worktree; run modhook from a checkout").
			Wrap(err).
			BuildError()
	}

	return repo, types.FilesystemPath(wt.Filesystem.Root()), nil
}

// FromGit lists changed files of the repository containing dir. Deleted files
// are included so the module that lost them is still checked.
func FromGit(ctx context.Context, dir types.FilesystemPath, mode GitMode) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	repo, root, err := OpenRepo(dir)
	if err != nil {
		return Result{}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, fmt.Errorf("open git worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return Result{}, issue.NewErrorContext().
			WithOperation("read git status").
			WithResource(root.String()).
			Wrap(err).
			BuildError()
	}

	var names []string
	for name, st := range status {
		if include(mode, st) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	files := make([]types.FilesystemPath, len(names))
	for i, name := range names {
		files[i] = fspath.FromSlash(types.FilesystemPath(name))
	}

	return Result{Files: files, BaseDir: root}, nil
}

func include(mode GitMode, st *git.FileStatus) bool {
	staged := st.Staging != git.Unmodified && st.Staging != git.Untracked
	switch mode {
	case GitModeStaged:
		return staged
	case GitModeModified:
		return staged || st.Worktree != git.Unmodified
	default:
		return false
	}
}
