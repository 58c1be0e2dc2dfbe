// SPDX-License-Identifier: MPL-2.0

// Package runtime runs the configured linter command inside one module root.
//
// Two runtime implementations are available:
//   - native: splits the command into words (mvdan/sh shell.Fields) and
//     executes the program directly with os/exec
//   - virtual: interprets the command as a POSIX shell program with the
//     embedded mvdan/sh interpreter
//
// Both receive the working directory explicitly through ExecutionContext;
// the process working directory is never changed. The module root is also
// exported to the command as MODHOOK_MODULE_ROOT.
//
// Environment building merges, from lowest to highest priority: the host
// environment, env files (dotenv format) resolved against the module root,
// static variables, and MODHOOK_MODULE_ROOT.
package runtime
