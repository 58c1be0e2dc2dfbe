// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

type (
	// Resolver finds the module root of changed files.
	//
	// Relative input paths are interpreted against the base directory and the
	// upward walk stops once the base directory itself has been checked.
	// Absolute paths are walked up to the filesystem root. Returned roots keep
	// the form of their input: relative in, relative out.
	Resolver struct {
		fs       afero.Fs
		baseDir  types.FilesystemPath
		markers  []types.MarkerName
		excludes []string
	}

	// Option configures a Resolver.
	Option func(*Resolver)

	// markerCache remembers marker checks per directory for one invocation.
	markerCache map[types.FilesystemPath]bool
)

// WithFs sets the filesystem used for marker checks. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(r *Resolver) { r.fs = fsys }
}

// WithBaseDir sets the directory relative inputs are resolved against.
// The empty value means the process working directory.
func WithBaseDir(dir types.FilesystemPath) Option {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithMarkers sets the manifest marker names. A directory is a module root
// when it contains any one of them.
func WithMarkers(markers ...types.MarkerName) Option {
	return func(r *Resolver) { r.markers = markers }
}

// WithExcludes sets doublestar glob patterns; input files matching any of
// them are dropped before resolution.
func WithExcludes(patterns ...string) Option {
	return func(r *Resolver) { r.excludes = patterns }
}

// New creates a Resolver. It fails if a marker name or an exclude pattern is invalid.
func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		fs:      afero.NewOsFs(),
		markers: []types.MarkerName{types.DefaultMarkerName},
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(r.markers) == 0 {
		return nil, fmt.Errorf("resolver: at least one marker name is required")
	}
	for _, m := range r.markers {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
	}
	for _, pat := range r.excludes {
		if _, err := doublestar.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("resolver: invalid exclude pattern %q: %w", pat, err)
		}
	}
	if r.baseDir != "" {
		if err := r.baseDir.Validate(); err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
	}

	return r, nil
}

// Resolve maps files to their module roots and returns them deduplicated in
// first-seen order. Files outside any module, blank entries and excluded
// files contribute nothing. An error is returned only when the filesystem
// fails in a way other than "not there" or when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, files []types.FilesystemPath) (*ModuleRootSet, error) {
	set := NewModuleRootSet()
	cache := make(markerCache)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve module roots: %w", err)
		}

		root, ok, err := r.findRoot(ctx, file, cache)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if set.Add(root) {
			logging.FromContext(ctx).Debug("module root discovered", "root", root.String(), "file", file.String())
		}
	}

	return set, nil
}

// FindRoot returns the module root owning file. The boolean is false when the
// file belongs to no module or is excluded.
func (r *Resolver) FindRoot(ctx context.Context, file types.FilesystemPath) (types.FilesystemPath, bool, error) {
	return r.findRoot(ctx, file, make(markerCache))
}

func (r *Resolver) findRoot(ctx context.Context, file types.FilesystemPath, cache markerCache) (types.FilesystemPath, bool, error) {
	if file.Validate() != nil {
		return "", false, nil
	}
	file = fspath.Clean(file)
	if r.isExcluded(file) {
		logging.FromContext(ctx).Debug("file excluded", "file", file.String())
		return "", false, nil
	}

	if fspath.EscapesBase(file) {
		return r.findOutsideBase(ctx, file, cache)
	}

	root, ok, err := r.walkUp(fspath.Dir(file), cache)
	if err == nil && !ok {
		logging.FromContext(ctx).Debug("no module root", "file", file.String())
	}
	return root, ok, err
}

// findOutsideBase resolves a relative file that lies above the base directory.
func (r *Resolver) findOutsideBase(ctx context.Context, file types.FilesystemPath, cache markerCache) (types.FilesystemPath, bool, error) {
	base := r.baseDir
	if base == "" {
		base = "."
	}
	absBase, err := fspath.Abs(base)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", file, err)
	}

	root, ok, err := r.walkUp(fspath.Dir(fspath.Join(absBase, file)), cache)
	if err != nil || !ok {
		if err == nil {
			logging.FromContext(ctx).Debug("no module root", "file", file.String())
		}
		return "", false, err
	}

	rel, err := fspath.Rel(absBase, root)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", file, err)
	}
	return rel, true, nil
}

// walkUp checks dir and its ancestors for a marker. Relative walks end at ".",
// absolute walks at the filesystem root.
func (r *Resolver) walkUp(dir types.FilesystemPath, cache markerCache) (types.FilesystemPath, bool, error) {
	for {
		found, err := r.hasMarker(dir, cache)
		if err != nil {
			return "", false, err
		}
		if found {
			return dir, true, nil
		}
		if fspath.IsRoot(dir) {
			return "", false, nil
		}
		dir = fspath.Dir(dir)
	}
}

func (r *Resolver) hasMarker(dir types.FilesystemPath, cache markerCache) (bool, error) {
	if found, ok := cache[dir]; ok {
		return found, nil
	}

	found := false
	for _, marker := range r.markers {
		info, err := r.fs.Stat(string(fspath.JoinStr(r.onDisk(dir), marker.String())))
		if err != nil {
			if isMiss(err) {
				continue
			}
			return false, issue.NewErrorContext().
				WithOperation("check module marker").
				WithResource(dir.String()).
				WithSuggestion("Check that the directory is accessible").
				Wrap(err).
				BuildError()
		}
		if !info.IsDir() {
			found = true
			break
		}
	}

	cache[dir] = found
	return found, nil
}

// onDisk returns the path used for filesystem access.
func (r *Resolver) onDisk(dir types.FilesystemPath) types.FilesystemPath {
	if r.baseDir == "" || fspath.IsAbs(dir) {
		return dir
	}
	return fspath.Join(r.baseDir, dir)
}

func (r *Resolver) isExcluded(file types.FilesystemPath) bool {
	normalized := fspath.ToSlash(file)
	for _, pat := range r.excludes {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// isMiss reports whether a stat error means "no marker here" rather than a
// broken environment.
func isMiss(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ENAMETOOLONG)
}
