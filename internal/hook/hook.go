// SPDX-License-Identifier: MPL-2.0

package hook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"mvdan.cc/sh/v3/syntax"

	"github.com/modhook/modhook/internal/changes"
	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

const (
	// Name is the Git hook modhook installs.
	Name = "pre-commit"
	// Signature identifies scripts written by Install.
	Signature = "# Installed by modhook."
	// DefaultExecutable is invoked by the script when no path is given.
	DefaultExecutable = "modhook"
)

var (
	// ErrForeignHook is returned when a hook exists that modhook did not write.
	ErrForeignHook = errors.New("pre-commit hook was not installed by modhook")
	// ErrNotInstalled is returned by Uninstall when there is no hook to remove.
	ErrNotInstalled = errors.New("pre-commit hook is not installed")
)

// Options configures Install.
type Options struct {
	// Dir is any directory inside the repository. Empty means the working directory.
	Dir types.FilesystemPath
	// Executable is the modhook binary the script calls.
	Executable string
	// Args are extra arguments appended after "run --staged".
	Args []string
	// Force replaces a hook that modhook did not write.
	Force bool
}

// Script returns the hook script body. It fails when the executable or an
// argument cannot be written as a POSIX shell word, such as a string holding
// a NUL byte or a non-printable character.
func Script(executable string, args ...string) (string, error) {
	if executable == "" {
		executable = DefaultExecutable
	}

	words := append([]string{executable, "run", "--staged"}, args...)
	cmd := make([]string, 0, len(words))
	for _, w := range words {
		quoted, err := syntax.Quote(w, syntax.LangPOSIX)
		if err != nil {
			return "", fmt.Errorf("cannot quote %q for the hook script: %w", w, err)
		}
		cmd = append(cmd, quoted)
	}

	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	sb.WriteString(Signature + " Remove with: modhook hook uninstall\n")
	sb.WriteString("exec " + strings.Join(cmd, " ") + "\n")
	return sb.String(), nil
}

// Path returns the pre-commit hook path of the repository containing dir.
func Path(dir types.FilesystemPath) (types.FilesystemPath, error) {
	repo, root, err := changes.OpenRepo(dir)
	if err != nil {
		return "", err
	}
	hooksDir, err := hooksDir(repo, root)
	if err != nil {
		return "", err
	}
	return fspath.JoinStr(hooksDir, Name), nil
}

// Install writes the pre-commit hook and returns its path. An existing
// modhook hook is rewritten in place.
func Install(opts Options) (types.FilesystemPath, error) {
	path, err := Path(opts.Dir)
	if err != nil {
		return "", err
	}

	installed, err := isModhookHook(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", err
	case !installed && !opts.Force:
		return "", issue.NewErrorContext().
			WithOperation("install pre-commit hook").
			WithResource(path.String()).
			WithSuggestion("Use --force to replace the existing hook").
			WithSuggestion("Or call 'modhook run --staged' from your existing hook").
			Wrap(ErrForeignHook).
			BuildError()
	}

	script, err := Script(opts.Executable, opts.Args...)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("install pre-commit hook").
			WithResource(path.String()).
			WithSuggestion("Remove control characters from the executable path and the extra arguments").
			Wrap(err).
			BuildError()
	}

	if err := os.MkdirAll(fspath.Dir(path).String(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create hooks directory: %w", err)
	}
	//nolint:gosec // Hook scripts must be executable.
	if err := os.WriteFile(path.String(), []byte(script), 0o755); err != nil {
		return "", fmt.Errorf("failed to write hook: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path.String(), 0o755); err != nil {
		return "", fmt.Errorf("failed to make hook executable: %w", err)
	}

	return path, nil
}

// Uninstall removes the pre-commit hook written by Install and returns its path.
func Uninstall(dir types.FilesystemPath) (types.FilesystemPath, error) {
	path, err := Path(dir)
	if err != nil {
		return "", err
	}

	installed, err := isModhookHook(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, ErrNotInstalled
	}
	if err != nil {
		return "", err
	}
	if !installed {
		return path, issue.NewErrorContext().
			WithOperation("uninstall pre-commit hook").
			WithResource(path.String()).
			WithSuggestion("Remove the modhook call from the hook by hand").
			Wrap(ErrForeignHook).
			BuildError()
	}

	if err := os.Remove(path.String()); err != nil {
		return "", fmt.Errorf("failed to remove hook: %w", err)
	}
	return path, nil
}

// Installed reports whether the repository containing dir has the modhook hook.
func Installed(dir types.FilesystemPath) (bool, error) {
	path, err := Path(dir)
	if err != nil {
		return false, err
	}
	ok, err := isModhookHook(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return ok, err
}

func hooksDir(repo *git.Repository, root types.FilesystemPath) (types.FilesystemPath, error) {
	cfg, err := repo.Config()
	if err != nil {
		return "", fmt.Errorf("failed to read git config: %w", err)
	}
	if p := cfg.Raw.Section("core").Option("hooksPath"); p != "" {
		hp := fspath.FromSlash(types.FilesystemPath(p))
		if !fspath.IsAbs(hp) {
			hp = fspath.Join(root, hp)
		}
		return hp, nil
	}

	fsStorage, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", fmt.Errorf("repository at %s has no on-disk .git directory", root)
	}
	return fspath.JoinStr(types.FilesystemPath(fsStorage.Filesystem().Root()), "hooks"), nil
}

func isModhookHook(path types.FilesystemPath) (bool, error) {
	data, err := os.ReadFile(path.String())
	if err != nil {
		return false, err
	}
	return strings.Contains(string(data), Signature), nil
}
