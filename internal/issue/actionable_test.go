// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "resolve module roots"},
			expected: "failed to resolve module roots",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "load configuration",
				Resource:  "modhook.cue",
			},
			expected: "failed to load configuration: modhook.cue",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "run linter",
				Cause:     errors.New("executable not found"),
			},
			expected: "failed to run linter: executable not found",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "check module marker",
				Resource:  "service1",
				Cause:     errors.New("input/output error"),
			},
			expected: "failed to check module marker: service1: input/output error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_UnwrapAndIs(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("check module marker").
		WithResource("service1").
		Wrap(fs.ErrPermission).
		BuildError()
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ActionableError")
	}
	if ae.Resource != "service1" {
		t.Errorf("Resource = %q, want %q", ae.Resource, "service1")
	}

	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("no such file or directory")
	err := NewErrorContext().
		WithOperation("run linter").
		WithResource("service1").
		WithSuggestion("Install the linter").
		WithSuggestions("Set linter.run in modhook.cue").
		Wrap(inner).
		Build()

	plain := err.Format(false)
	if !strings.HasPrefix(plain, "failed to run linter: service1") {
		t.Errorf("Format(false) = %q, missing headline", plain)
	}
	if !strings.Contains(plain, "• Install the linter") || !strings.Contains(plain, "• Set linter.run in modhook.cue") {
		t.Errorf("Format(false) = %q, missing suggestions", plain)
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain: %q", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "1. no such file or directory") {
		t.Errorf("Format(true) = %q, missing error chain", verbose)
	}
	if !err.HasSuggestions() {
		t.Error("HasSuggestions() = false, want true")
	}
}

func TestErrorContext_BuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("service1").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().WithOperation("load configuration").BuildError(); got == nil {
		t.Error("BuildError() with operation returned nil")
	}
}

func TestErrorContext_BuildCopiesSuggestions(t *testing.T) {
	t.Parallel()

	ec := NewErrorContext().WithOperation("install pre-commit hook").WithSuggestion("Use --force")
	first := ec.Build()
	ec.WithSuggestion("Remove the hook by hand")

	if len(first.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want the single suggestion set before Build", first.Suggestions)
	}
	if got := ec.Build().Suggestions; len(got) != 2 {
		t.Errorf("second Build() Suggestions = %v, want 2", got)
	}
}
