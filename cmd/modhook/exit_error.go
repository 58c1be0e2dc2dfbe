// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/modhook/modhook/pkg/types"

// ExitError carries the process exit status out of a RunE handler. Execute
// turns it into os.Exit; a nil Err means the failure was already reported.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + e.Code.String()
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
