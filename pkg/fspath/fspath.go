// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so callers get typed-in/typed-out
// path operations without converting at every call site.
package fspath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modhook/modhook/pkg/types"
)

// Join wraps filepath.Join, accepting and returning types.FilesystemPath.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments. Use this when joining a path with a marker name or a literal
// constant (e.g., ".git").
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath. Returns an error if the
// underlying OS call fails.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// FromSlash wraps filepath.FromSlash for FilesystemPath. Converts forward
// slashes to the OS-specific path separator.
func FromSlash(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.FromSlash(string(p)))
}

// ToSlash wraps filepath.ToSlash and returns the slash-separated form as a
// plain string, which is what glob matching operates on.
func ToSlash(p types.FilesystemPath) string {
	return filepath.ToSlash(string(p))
}

// IsAbs wraps filepath.IsAbs for FilesystemPath.
func IsAbs(p types.FilesystemPath) bool {
	return filepath.IsAbs(string(p))
}

// IsRoot reports whether p cannot be walked further up, i.e. Dir(p) == p.
// This holds for the filesystem root ("/", "C:\") and for ".".
func IsRoot(p types.FilesystemPath) bool {
	return Dir(p) == p
}

// Rel wraps filepath.Rel for FilesystemPath.
func Rel(base, target types.FilesystemPath) (types.FilesystemPath, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}
	return types.FilesystemPath(rel), nil
}

// EscapesBase reports whether the relative path p, once cleaned, climbs above
// the directory it is relative to ("..", "../x"). Absolute paths never do.
func EscapesBase(p types.FilesystemPath) bool {
	if IsAbs(p) {
		return false
	}
	c := string(Clean(p))
	return c == ".." || strings.HasPrefix(c, ".."+string(filepath.Separator))
}
