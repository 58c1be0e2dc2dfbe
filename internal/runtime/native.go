// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os/exec"

	"mvdan.cc/sh/v3/shell"

	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/platform"
	"github.com/modhook/modhook/pkg/types"
)

// NativeRuntime executes the linter binary directly, without a shell.
// The command line is split into words with POSIX quoting rules and
// parameter expansion against the invocation environment. Inside a Flatpak
// sandbox the binary is started on the host through flatpak-spawn.
type NativeRuntime struct {
	sandbox platform.SandboxType
}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{sandbox: platform.DetectSandbox()}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Validate checks that the command splits into at least one word.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	_, err := r.argv(ctx.Command, nil)
	return err
}

// Execute runs the linter, streaming output to ctx.IO.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	out := newStreamingOutput(ctx.IO.Stdout, ctx.IO.Stderr)
	return r.run(ctx, out, nil)
}

// ExecuteCapture runs the linter and captures its output.
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	out, captured := newCapturingOutput()
	return r.run(ctx, out, captured)
}

func (r *NativeRuntime) run(ctx *ExecutionContext, out *executeOutput, captured *capturedOutput) *Result {
	root, args, env, err := r.prepare(ctx)
	if err != nil {
		return NewErrorResult(1, err)
	}

	runCtx := ctx.Context
	if runCtx == nil {
		runCtx = context.Background()
	}

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = root.String()
	cmd.Env = env
	cmd.Stdout = out.stdout
	cmd.Stderr = out.stderr
	cmd.Stdin = ctx.IO.Stdin

	err = cmd.Run()
	if err != nil && runCtx.Err() != nil {
		return withOutput(NewErrorResult(1, fmt.Errorf("%s: %w", args[0], runCtx.Err())), captured)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return withOutput(NewErrorResult(127, fmt.Errorf("%w: %s", ErrCommandNotFound, args[0])), captured)
	}
	return extractExitCode(err, captured)
}

// prepare resolves the working directory, the argv and the environment of
// one invocation.
func (r *NativeRuntime) prepare(ctx *ExecutionContext) (types.FilesystemPath, []string, []string, error) {
	root, err := fspath.Abs(ctx.WorkDir)
	if err != nil {
		return "", nil, nil, err
	}
	overlay, err := overlayEnv(ctx, root)
	if err != nil {
		return "", nil, nil, err
	}
	env := hostEnv()
	maps.Copy(env, overlay)

	args, err := r.argv(ctx.Command, env)
	if err != nil {
		return "", nil, nil, err
	}
	args = platform.HostCommand(r.sandbox, root.String(), EnvToSlice(overlay), args)

	return root, args, EnvToSlice(env), nil
}

// argv splits command into words. A nil env expands every variable to the
// empty string, which is enough to validate the quoting.
func (r *NativeRuntime) argv(command string, env map[string]string) ([]string, error) {
	fields, err := shell.Fields(command, func(name string) string {
		return env[name]
	})
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	return fields, nil
}
