// SPDX-License-Identifier: MPL-2.0

package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/internal/runtime"
	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

// ErrNoRuntime is returned by NewRunner when Options.Runtime is nil.
var ErrNoRuntime = errors.New("no runtime configured")

type (
	// Options configures a Runner.
	Options struct {
		// Command is the linter command line run in each module root.
		Command string
		// Runtime executes Command.
		Runtime runtime.Runtime
		// BaseDir anchors relative roots. Results keep the root as given.
		BaseDir types.FilesystemPath
		// Timeout bounds each invocation. Zero means no limit.
		Timeout time.Duration
		// FailFast stops invoking the linter after the first failing module.
		FailFast bool
		// Capture stores linter output in the results instead of streaming it.
		Capture bool
		// Env and EnvFiles are passed to every invocation.
		Env      map[string]string
		EnvFiles []string
		// Stdout, Stderr and Stdin are used when output is streamed.
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
		// OnStart is called before the linter runs in root.
		OnStart func(root types.FilesystemPath)
		// OnResult is called after each module, including skipped ones.
		OnResult func(ModuleResult)
		// Clock measures durations. Nil means wall-clock time.
		Clock Clock
	}

	// Runner invokes the linter sequentially across module roots.
	Runner struct {
		opts Options
	}
)

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Runtime == nil {
		return nil, ErrNoRuntime
	}
	if err := opts.Runtime.Validate(&runtime.ExecutionContext{Command: opts.Command}); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse linter command").
			WithResource(opts.Command).
			WithSuggestion("Check linter.run in your modhook configuration").
			Wrap(err).
			BuildError()
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("linter timeout must not be negative, got %s", opts.Timeout)
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Runner{opts: opts}, nil
}

// Run invokes the linter once per root, in order, and returns the report.
// Module failures are recorded in the report; the returned error is only set
// when a run could not be performed, in which case the partial report is
// returned alongside it.
func (r *Runner) Run(ctx context.Context, roots []types.FilesystemPath) (*Report, error) {
	log := logging.FromContext(ctx)
	report := &Report{Results: make([]ModuleResult, 0, len(roots))}

	halted := false
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if halted {
			res := ModuleResult{Root: root, Status: StatusSkipped}
			report.Results = append(report.Results, res)
			r.notifyResult(res)
			continue
		}

		if r.opts.OnStart != nil {
			r.opts.OnStart(root)
		}
		log.Debug("running linter", "root", root, "command", r.opts.Command, "runtime", r.opts.Runtime.Name())

		res, err := r.runModule(ctx, root)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
		r.notifyResult(res)

		if res.Failed() {
			log.Debug("linter failed", "root", root, "exit_code", res.ExitCode, "status", res.Status)
			halted = r.opts.FailFast
		}
	}

	return report, nil
}

func (r *Runner) runModule(ctx context.Context, root types.FilesystemPath) (ModuleResult, error) {
	modCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		modCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	execCtx := &runtime.ExecutionContext{
		Context:  modCtx,
		Command:  r.opts.Command,
		WorkDir:  r.workDir(root),
		Env:      r.opts.Env,
		EnvFiles: r.opts.EnvFiles,
		IO: runtime.IOContext{
			Stdout: r.opts.Stdout,
			Stderr: r.opts.Stderr,
			Stdin:  r.opts.Stdin,
		},
	}

	start := r.opts.Clock.Now()
	var res *runtime.Result
	if r.opts.Capture {
		res = r.opts.Runtime.ExecuteCapture(execCtx)
	} else {
		res = r.opts.Runtime.Execute(execCtx)
	}

	mod := ModuleResult{
		Root:      root,
		ExitCode:  res.ExitCode,
		Duration:  r.opts.Clock.Since(start),
		Output:    res.Output,
		ErrOutput: res.ErrOutput,
	}

	switch {
	case res.Error == nil && res.ExitCode.IsSuccess():
		mod.Status = StatusPassed
	case res.Error == nil:
		mod.Status = StatusFailed
	case ctx.Err() != nil:
		return mod, ctx.Err()
	case errors.Is(modCtx.Err(), context.DeadlineExceeded):
		mod.Status = StatusTimedOut
		mod.ExitCode = timeoutExitCode
	default:
		return mod, runError(root, res.Error)
	}

	return mod, nil
}

func (r *Runner) workDir(root types.FilesystemPath) types.FilesystemPath {
	if r.opts.BaseDir == "" || fspath.IsAbs(root) {
		return root
	}
	return fspath.Join(r.opts.BaseDir, root)
}

func (r *Runner) notifyResult(res ModuleResult) {
	if r.opts.OnResult != nil {
		r.opts.OnResult(res)
	}
}

func runError(root types.FilesystemPath, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("run linter").
		WithResource(root.String())
	if errors.Is(err, runtime.ErrCommandNotFound) {
		ec.WithSuggestions(
			"Install the linter and make sure it is on PATH",
			"Or point linter.run at the binary in your modhook configuration",
		)
	}
	return ec.Wrap(err).BuildError()
}
