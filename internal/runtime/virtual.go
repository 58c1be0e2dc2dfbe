// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

// VirtualRuntime interprets the linter command as a POSIX shell program
// using the embedded mvdan/sh interpreter. External programs are still
// executed from PATH; builtins, pipes and conditionals need no host shell.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Validate checks that the command parses as a shell program.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	_, err := r.parse(ctx.Command)
	return err
}

// Execute runs the command, streaming output to ctx.IO.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	out := newStreamingOutput(ctx.IO.Stdout, ctx.IO.Stderr)
	return r.run(ctx, out, nil)
}

// ExecuteCapture runs the command and captures its output.
func (r *VirtualRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	out, captured := newCapturingOutput()
	return r.run(ctx, out, captured)
}

func (r *VirtualRuntime) run(ctx *ExecutionContext, out *executeOutput, captured *capturedOutput) *Result {
	prog, err := r.parse(ctx.Command)
	if err != nil {
		return NewErrorResult(1, err)
	}
	root, err := fspath.Abs(ctx.WorkDir)
	if err != nil {
		return NewErrorResult(1, err)
	}
	env, err := buildEnv(ctx, root)
	if err != nil {
		return NewErrorResult(1, err)
	}

	runner, err := interp.New(
		interp.Dir(root.String()),
		interp.Env(expand.ListEnviron(EnvToSlice(env)...)),
		interp.StdIO(ctx.IO.Stdin, out.stdout, out.stderr),
		interp.ExecHandlers(lookPathHandler),
	)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	runCtx := ctx.Context
	if runCtx == nil {
		runCtx = context.Background()
	}

	err = runner.Run(runCtx, prog)
	if err == nil {
		return withOutput(&Result{}, captured)
	}
	if runCtx.Err() != nil {
		return withOutput(NewErrorResult(1, fmt.Errorf("linter command: %w", runCtx.Err())), captured)
	}
	if errors.Is(err, ErrCommandNotFound) {
		return withOutput(NewErrorResult(127, err), captured)
	}
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		return withOutput(NewExitCodeResult(types.ExitCode(exitStatus).AsFailure()), captured)
	}
	return withOutput(NewErrorResult(1, fmt.Errorf("script execution failed: %w", err)), captured)
}

func (r *VirtualRuntime) parse(command string) (*syntax.File, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "linter")
	if err != nil {
		return nil, fmt.Errorf("command syntax error: %w", err)
	}
	return prog, nil
}

// lookPathHandler turns a missing program into ErrCommandNotFound, which
// stops the interpreter, instead of the shell's exit status 127.
func lookPathHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		if _, err := interp.LookPathDir(hc.Dir, hc.Env, args[0]); err != nil {
			return fmt.Errorf("%w: %s", ErrCommandNotFound, args[0])
		}
		return next(ctx, args)
	}
}
