// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
	"testing"

	"github.com/modhook/modhook/pkg/platform"
	"github.com/modhook/modhook/pkg/types"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if goruntime.GOOS == platform.Windows {
		t.Skip("requires a POSIX sh on PATH")
	}
}

func samePath(t *testing.T, got, want string) bool {
	t.Helper()
	g, err := filepath.EvalSymlinks(strings.TrimSpace(got))
	if err != nil {
		return false
	}
	w, err := filepath.EvalSymlinks(want)
	if err != nil {
		t.Fatalf("EvalSymlinks(%q) error = %v", want, err)
	}
	return g == w
}

func TestNativeRuntime_WorkDir(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := t.TempDir()
	ctx := NewExecutionContext(context.Background(), "sh -c pwd", types.FilesystemPath(root))

	res := NewNativeRuntime().ExecuteCapture(ctx)
	if !res.Success() {
		t.Fatalf("ExecuteCapture() = %+v", res)
	}
	if !samePath(t, res.Output, root) {
		t.Errorf("pwd = %q, want %q", res.Output, root)
	}
}

func TestNativeRuntime_ExitCode(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	ctx := NewExecutionContext(context.Background(), `sh -c 'echo failing >&2; exit 3'`, types.FilesystemPath(t.TempDir()))

	res := NewNativeRuntime().ExecuteCapture(ctx)
	if res.Error != nil {
		t.Fatalf("ExecuteCapture() error = %v, want plain exit code", res.Error)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if strings.TrimSpace(res.ErrOutput) != "failing" {
		t.Errorf("ErrOutput = %q, want %q", res.ErrOutput, "failing")
	}
}

func TestNativeRuntime_Streaming(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	root := t.TempDir()
	var stdout, stderr bytes.Buffer
	ctx := NewExecutionContext(context.Background(), `sh -c 'echo "$MODHOOK_MODULE_ROOT"; echo "$GREETING"'`, types.FilesystemPath(root))
	ctx.Env["GREETING"] = "hello"
	ctx.IO = IOContext{Stdout: &stdout, Stderr: &stderr}

	res := NewNativeRuntime().Execute(ctx)
	if !res.Success() {
		t.Fatalf("Execute() = %+v, stderr: %s", res, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 || lines[0] != root || lines[1] != "hello" {
		t.Errorf("stdout = %q, want module root and greeting", stdout.String())
	}
	if res.Output != "" {
		t.Errorf("Execute() should not capture output, got %q", res.Output)
	}
}

func TestNativeRuntime_ExpandsWords(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	ctx := NewExecutionContext(context.Background(), "echo $FLAGS \"two words\"", types.FilesystemPath(t.TempDir()))
	ctx.Env["FLAGS"] = "--fast"

	res := NewNativeRuntime().ExecuteCapture(ctx)
	if !res.Success() {
		t.Fatalf("ExecuteCapture() = %+v", res)
	}
	if got := strings.TrimSpace(res.Output); got != "--fast two words" {
		t.Errorf("output = %q, want %q", got, "--fast two words")
	}
}

func TestNativeRuntime_CommandNotFound(t *testing.T) {
	t.Parallel()

	ctx := NewExecutionContext(context.Background(), "modhook-no-such-linter run", types.FilesystemPath(t.TempDir()))

	res := NewNativeRuntime().ExecuteCapture(ctx)
	if !errors.Is(res.Error, ErrCommandNotFound) {
		t.Fatalf("Error = %v, want ErrCommandNotFound", res.Error)
	}
	if res.ExitCode != 127 {
		t.Errorf("ExitCode = %d, want 127", res.ExitCode)
	}
}

func TestNativeRuntime_CanceledContext(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewNativeRuntime().ExecuteCapture(NewExecutionContext(ctx, "sh -c true", types.FilesystemPath(t.TempDir())))
	if !errors.Is(res.Error, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled", res.Error)
	}
}

func TestNativeRuntime_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		command string
		wantErr error
	}{
		{name: "simple", command: "golangci-lint run ./..."},
		{name: "quoted", command: `go vet -tags "a b" ./...`},
		{name: "empty", command: "", wantErr: ErrEmptyCommand},
		{name: "blank", command: "   ", wantErr: ErrEmptyCommand},
		{name: "unterminated quote", command: `golangci-lint run "./...`},
	}

	rt := NewNativeRuntime()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := rt.Validate(&ExecutionContext{Command: tt.command})
			switch {
			case tt.name == "unterminated quote":
				if err == nil {
					t.Error("Validate() should reject unbalanced quoting")
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			case err != nil:
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestNativeRuntime_PrepareInFlatpak(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ctx := NewExecutionContext(context.Background(), "golangci-lint run", types.FilesystemPath(root))
	ctx.Env["GOFLAGS"] = "-mod=mod"

	rt := &NativeRuntime{sandbox: platform.SandboxFlatpak}
	dir, args, _, err := rt.prepare(ctx)
	if err != nil {
		t.Fatalf("prepare() error = %v", err)
	}

	want := []string{
		"flatpak-spawn", "--host", "--directory=" + dir.String(),
		"--env=GOFLAGS=-mod=mod",
		"--env=" + EnvModuleRoot + "=" + dir.String(),
		"golangci-lint", "run",
	}
	if !slices.Equal(args, want) {
		t.Errorf("argv = %q, want %q", args, want)
	}
}

func TestNativeRuntime_PrepareOutsideSandbox(t *testing.T) {
	t.Parallel()

	ctx := NewExecutionContext(context.Background(), "golangci-lint run", types.FilesystemPath(t.TempDir()))

	rt := &NativeRuntime{sandbox: platform.SandboxNone}
	_, args, env, err := rt.prepare(ctx)
	if err != nil {
		t.Fatalf("prepare() error = %v", err)
	}
	if !slices.Equal(args, []string{"golangci-lint", "run"}) {
		t.Errorf("argv = %q, want unchanged command", args)
	}
	if !slices.ContainsFunc(env, func(kv string) bool { return strings.HasPrefix(kv, EnvModuleRoot+"=") }) {
		t.Errorf("env lacks %s", EnvModuleRoot)
	}
}
