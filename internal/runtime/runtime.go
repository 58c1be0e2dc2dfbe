// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/modhook/modhook/pkg/types"
)

// Runtime type constants for the supported execution environments.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

// EnvModuleRoot is set to the absolute module root for every invocation.
const EnvModuleRoot = "MODHOOK_MODULE_ROOT"

var (
	// ErrCommandNotFound is returned when the linter program cannot be located.
	ErrCommandNotFound = errors.New("command not found")
	// ErrEmptyCommand is returned when there is nothing to execute.
	ErrEmptyCommand = errors.New("empty command")
	// ErrInvalidRuntimeType is the sentinel error wrapped by InvalidRuntimeTypeError.
	ErrInvalidRuntimeType = errors.New("invalid runtime type")
)

type (
	// IOContext groups the standard streams of one execution.
	IOContext struct {
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
	}

	// ExecutionContext contains all information needed to execute the linter
	// in one module root.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// Command is the linter command line.
		Command string
		// WorkDir is the module root the command runs in.
		WorkDir types.FilesystemPath
		// Env holds static variables layered over the host environment.
		Env map[string]string
		// EnvFiles are dotenv files resolved against WorkDir. A trailing '?'
		// marks a file as optional.
		EnvFiles []string
		// IO holds the streams used by Execute. ExecuteCapture ignores
		// Stdout and Stderr.
		IO IOContext
	}

	// Result contains the result of a command execution.
	Result struct {
		// ExitCode is the exit code of the command.
		ExitCode types.ExitCode
		// Error is set when the command could not run at all.
		Error error
		// Output contains captured stdout (if captured).
		Output string
		// ErrOutput contains captured stderr (if captured).
		ErrOutput string
	}

	// Runtime defines the interface for command execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Validate checks if the command can be executed with this runtime.
		Validate(ctx *ExecutionContext) error
		// Execute runs the command, streaming output to ctx.IO.
		Execute(ctx *ExecutionContext) *Result
		// ExecuteCapture runs the command and captures stdout and stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// InvalidRuntimeTypeError is returned when a RuntimeType is not one of
	// the registered types.
	InvalidRuntimeTypeError struct {
		Value RuntimeType
	}

	// Registry holds all available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context for command in workDir
// wired to the process standard streams.
func NewExecutionContext(ctx context.Context, command string, workDir types.FilesystemPath) *ExecutionContext {
	return &ExecutionContext{
		Context: ctx,
		Command: command,
		WorkDir: workDir,
		Env:     make(map[string]string),
		IO: IOContext{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
			Stdin:  os.Stdin,
		},
	}
}

// Success returns true if the command executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// Error implements the error interface.
func (e *InvalidRuntimeTypeError) Error() string {
	return fmt.Sprintf("invalid runtime type %q (valid: %s, %s)", e.Value, RuntimeTypeNative, RuntimeTypeVirtual)
}

// Unwrap returns ErrInvalidRuntimeType so callers can use errors.Is for programmatic detection.
func (e *InvalidRuntimeTypeError) Unwrap() error { return ErrInvalidRuntimeType }

// String returns the string representation of the RuntimeType.
func (t RuntimeType) String() string { return string(t) }

// Validate returns nil if t names a supported runtime.
func (t RuntimeType) Validate() error {
	switch t {
	case RuntimeTypeNative, RuntimeTypeVirtual:
		return nil
	default:
		return &InvalidRuntimeTypeError{Value: t}
	}
}

// NewRegistry creates a new runtime registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// DefaultRegistry returns a registry with the native and virtual runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return r
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, &InvalidRuntimeTypeError{Value: typ}
	}
	return rt, nil
}

// Types returns the registered runtime types in sorted order.
func (r *Registry) Types() []RuntimeType {
	types := make([]RuntimeType, 0, len(r.runtimes))
	for typ := range r.runtimes {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}
