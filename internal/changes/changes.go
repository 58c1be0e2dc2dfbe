// SPDX-License-Identifier: MPL-2.0

package changes

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/modhook/modhook/pkg/types"
)

const (
	// GitModeNone means files are not read from Git.
	GitModeNone GitMode = iota
	// GitModeStaged reads files with changes recorded in the index.
	GitModeStaged
	// GitModeModified reads every changed file in the worktree, staged or not,
	// including untracked files that are not ignored.
	GitModeModified
)

// ErrConflictingSources is returned when a request mixes Git with other sources.
var ErrConflictingSources = errors.New("conflicting file sources")

type (
	// GitMode selects which Git changes are listed.
	GitMode int

	// Request describes where the changed files come from.
	Request struct {
		// Args are files given on the command line.
		Args []string
		// Stdin is read when FromStdin is set.
		Stdin io.Reader
		// FromStdin appends the whitespace-delimited list read from Stdin.
		FromStdin bool
		// Git selects a Git source. It cannot be combined with Args or FromStdin.
		Git GitMode
		// Dir is where Git discovery starts. Empty means the working directory.
		Dir types.FilesystemPath
	}

	// Result is the ordered list of files plus the directory relative paths
	// in it are anchored to. An empty BaseDir means the working directory.
	Result struct {
		Files   []types.FilesystemPath
		BaseDir types.FilesystemPath
	}
)

// String returns the flag-style name of the mode.
func (m GitMode) String() string {
	switch m {
	case GitModeNone:
		return "none"
	case GitModeStaged:
		return "staged"
	case GitModeModified:
		return "modified"
	default:
		return fmt.Sprintf("GitMode(%d)", int(m))
	}
}

// Collect gathers the files described by req, preserving input order for
// arguments and standard input.
func Collect(ctx context.Context, req Request) (Result, error) {
	if req.Git != GitModeNone {
		if len(req.Args) > 0 || req.FromStdin {
			return Result{}, fmt.Errorf("%w: --%s cannot be combined with file arguments or --stdin", ErrConflictingSources, req.Git)
		}
		return FromGit(ctx, req.Dir, req.Git)
	}

	files := types.PathsFromStrings(req.Args)
	if req.FromStdin {
		if req.Stdin == nil {
			return Result{}, errors.New("read file list: no standard input")
		}
		listed, err := ParseList(req.Stdin)
		if err != nil {
			return Result{}, err
		}
		files = append(files, listed...)
	}

	return Result{Files: files}, nil
}

// ParseList reads a newline- or whitespace-delimited list of paths.
func ParseList(r io.Reader) ([]types.FilesystemPath, error) {
	var files []types.FilesystemPath
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		files = append(files, types.FilesystemPath(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file list: %w", err)
	}
	return files, nil
}
