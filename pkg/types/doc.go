// SPDX-License-Identifier: MPL-2.0

// Package types defines small typed values shared across modhook packages:
// filesystem paths, process exit codes and module manifest marker names.
//
// Each type carries a Validate method returning a typed error that wraps a
// package-level sentinel, so callers can use errors.Is for detection.
package types
