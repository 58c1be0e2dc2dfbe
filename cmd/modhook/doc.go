// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for modhook.
//
// The root command is built by NewRootCommand from an App, which carries the
// configuration provider, the runtime registry and the standard streams.
// Execute wraps the tree with fang for styled help, version output and
// interrupt handling.
package cmd
