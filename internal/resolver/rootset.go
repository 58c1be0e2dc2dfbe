// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"slices"

	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

// ModuleRootSet is an insertion-ordered set of module root directories.
// Entries are keyed by their cleaned path. The zero value is ready to use.
type ModuleRootSet struct {
	roots []types.FilesystemPath
	seen  map[types.FilesystemPath]struct{}
}

// NewModuleRootSet returns an empty set.
func NewModuleRootSet() *ModuleRootSet {
	return &ModuleRootSet{}
}

// Add inserts root if it is not already present and reports whether it was added.
func (s *ModuleRootSet) Add(root types.FilesystemPath) bool {
	root = fspath.Clean(root)
	if s.seen == nil {
		s.seen = make(map[types.FilesystemPath]struct{})
	}
	if _, ok := s.seen[root]; ok {
		return false
	}
	s.seen[root] = struct{}{}
	s.roots = append(s.roots, root)
	return true
}

// Contains reports whether root is in the set.
func (s *ModuleRootSet) Contains(root types.FilesystemPath) bool {
	_, ok := s.seen[fspath.Clean(root)]
	return ok
}

// Len returns the number of roots in the set.
func (s *ModuleRootSet) Len() int { return len(s.roots) }

// Roots returns a copy of the roots in first-seen order.
func (s *ModuleRootSet) Roots() []types.FilesystemPath {
	return slices.Clone(s.roots)
}

// Strings returns the roots as plain strings, in first-seen order.
func (s *ModuleRootSet) Strings() []string {
	out := make([]string, len(s.roots))
	for i, r := range s.roots {
		out[i] = r.String()
	}
	return out
}
