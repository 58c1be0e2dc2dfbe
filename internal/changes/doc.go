// SPDX-License-Identifier: MPL-2.0

// Package changes collects the list of changed files modhook works on.
//
// Files come from command-line arguments, from a whitespace-delimited list on
// standard input, or straight from Git: the index (staged changes, what a
// pre-commit hook sees) or the whole worktree status. Git-sourced paths are
// sorted and relative to the worktree root, which is reported as the base
// directory for module resolution.
package changes
