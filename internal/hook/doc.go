// SPDX-License-Identifier: MPL-2.0

// Package hook installs and removes the Git pre-commit hook that runs
// modhook against the staged files.
//
// The hooks directory is discovered through go-git: core.hooksPath when set,
// otherwise the hooks directory inside the repository's .git directory. Only
// scripts carrying the modhook signature line are updated or removed; a
// foreign hook is left alone unless installation is forced.
package hook
