// SPDX-License-Identifier: MPL-2.0

// Package watch reports changed files under a directory tree in debounced
// batches, for re-linting the modules that own them.
package watch
