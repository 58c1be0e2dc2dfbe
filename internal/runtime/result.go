// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"io"
	"os/exec"

	"github.com/modhook/modhook/pkg/types"
)

type (
	// executeOutput configures where command output is directed during execution.
	// It abstracts the difference between streaming (to ctx.IO) and capturing
	// (to bytes.Buffer) execution modes.
	executeOutput struct {
		stdout io.Writer
		stderr io.Writer
	}

	// capturedOutput holds the captured stdout and stderr buffers when capture mode is used.
	capturedOutput struct {
		stdout bytes.Buffer
		stderr bytes.Buffer
	}
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

func newStreamingOutput(stdout, stderr io.Writer) *executeOutput {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &executeOutput{stdout: stdout, stderr: stderr}
}

// newCapturingOutput returns an output configuration writing into the
// returned buffers.
func newCapturingOutput() (*executeOutput, *capturedOutput) {
	captured := &capturedOutput{}
	return &executeOutput{
		stdout: &captured.stdout,
		stderr: &captured.stderr,
	}, captured
}

func withOutput(res *Result, captured *capturedOutput) *Result {
	if captured != nil {
		res.Output = captured.stdout.String()
		res.ErrOutput = captured.stderr.String()
	}
	return res
}

// extractExitCode determines the exit code from a command execution error.
// A process killed by a signal reports -1 and is mapped onto a failing code.
func extractExitCode(err error, captured *capturedOutput) *Result {
	if err == nil {
		return withOutput(&Result{}, captured)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode()).AsFailure()
		return withOutput(NewExitCodeResult(code), captured)
	}

	// The process never ran (permission denied, bad working directory, ...).
	return withOutput(NewErrorResult(1, err), captured)
}
