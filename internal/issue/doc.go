// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// An ActionableError records which operation failed, which resource was
// involved and what the user can do about it. The CLI renders it with
// Format, adding the full cause chain in verbose mode.
package issue
