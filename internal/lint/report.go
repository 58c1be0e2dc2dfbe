// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modhook/modhook/pkg/types"
)

// Module status constants.
const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusTimedOut Status = "timed out"
)

// timeoutExitCode matches the status timeout(1) reports.
const timeoutExitCode types.ExitCode = 124

// ErrModuleFailed is the sentinel error wrapped by FailureError.
var ErrModuleFailed = errors.New("linter failed")

type (
	// Status is the outcome of one module.
	Status string

	// ModuleResult is the outcome of running the linter in one module root.
	ModuleResult struct {
		Root     types.FilesystemPath
		Status   Status
		ExitCode types.ExitCode
		Duration time.Duration
		// Output and ErrOutput are only set when output is captured.
		Output    string
		ErrOutput string
	}

	// Report lists module results in invocation order.
	Report struct {
		Results []ModuleResult
	}

	// FailureError reports every module whose linter run failed.
	FailureError struct {
		Failures []ModuleResult
	}
)

// Failed reports whether the module counts as a failure.
func (m ModuleResult) Failed() bool {
	return m.Status == StatusFailed || m.Status == StatusTimedOut
}

// Failed returns the failing modules in invocation order.
func (r *Report) Failed() []ModuleResult {
	var failed []ModuleResult
	for _, m := range r.Results {
		if m.Failed() {
			failed = append(failed, m)
		}
	}
	return failed
}

// Count returns how many modules ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, m := range r.Results {
		if m.Status == s {
			n++
		}
	}
	return n
}

// Passed reports whether no module failed. An empty report passes.
func (r *Report) Passed() bool {
	return len(r.Failed()) == 0
}

// ExitCode returns 0 when the report passed, otherwise the exit code of the
// first failing module.
func (r *Report) ExitCode() types.ExitCode {
	failed := r.Failed()
	if len(failed) == 0 {
		return 0
	}
	return failed[0].ExitCode.AsFailure()
}

// Err returns a *FailureError when any module failed, nil otherwise.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return &FailureError{Failures: failed}
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, m := range e.Failures {
		if m.Status == StatusTimedOut {
			parts[i] = fmt.Sprintf("%s (timed out)", m.Root)
			continue
		}
		parts[i] = fmt.Sprintf("%s (exit %d)", m.Root, m.ExitCode)
	}
	return fmt.Sprintf("linter failed in %d module(s): %s", len(e.Failures), strings.Join(parts, ", "))
}

// Unwrap returns ErrModuleFailed so callers can use errors.Is for programmatic detection.
func (e *FailureError) Unwrap() error { return ErrModuleFailed }

// ExitCode returns the exit code of the first failing module.
func (e *FailureError) ExitCode() types.ExitCode {
	if len(e.Failures) == 0 {
		return 1
	}
	return e.Failures[0].ExitCode.AsFailure()
}
