// SPDX-License-Identifier: MPL-2.0

// Package resolver maps changed file paths to the module roots that own them.
//
// A module root is the nearest ancestor directory of a file that contains a
// manifest marker file (go.mod by default). Resolve walks up from each file's
// directory until a marker is found or the walk cannot go further, and
// collects the roots in a ModuleRootSet: unique, in the order they were first
// discovered while scanning the input.
//
// Files that belong to no module are skipped silently. Only unexpected
// filesystem failures are reported as errors.
package resolver
