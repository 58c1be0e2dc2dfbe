// SPDX-License-Identifier: MPL-2.0

// Package config handles modhook configuration using Viper with CUE as the file format.
//
// Configuration is looked up in this order, first match wins:
//   - the file passed with --config (it must exist)
//   - modhook.cue in the working directory
//   - config.cue in the user config directory ($XDG_CONFIG_HOME/modhook on Linux,
//     ~/Library/Application Support/modhook on macOS, %APPDATA%\modhook on Windows)
//
// Files are validated against an embedded CUE schema (config_schema.cue) and
// merged over built-in defaults. MODHOOK_* environment variables override both,
// e.g. MODHOOK_LINTER_RUN or MODHOOK_FAIL_FAST.
package config
