// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// It covers Windows reserved file names, which can never be real marker
// files, and detection of application sandboxes whose processes must ask
// the host to run the linter.
package platform
