// SPDX-License-Identifier: MPL-2.0

// Package lint runs the linter once per module root.
//
// Roots are processed one at a time in the order given; each invocation
// receives its module root as an explicit working directory. A linter that
// exits non-zero is a module failure and is recorded in the Report. By
// default every root is attempted; with FailFast the remaining roots are
// marked as skipped after the first failure. Anything that prevents the
// linter from running at all (missing binary, malformed command, unreadable
// env file) aborts the run with an error.
package lint
