// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/issue"
	"github.com/modhook/modhook/internal/lint"
	"github.com/modhook/modhook/internal/testutil"
	"github.com/modhook/modhook/pkg/types"
)

// failingLinter fails with exit 3 in modules holding a FAIL file.
const failingLinter = `test -f FAIL && { echo "lint errors" >&2; exit 3; }; echo "clean $MODHOOK_MODULE_ROOT"`

type (
	testApp struct {
		app    *App
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	}

	fixedClock struct{}
)

func (fixedClock) Now() time.Time { return time.Time{} }

func (fixedClock) Since(time.Time) time.Duration { return 0 }

var _ lint.Clock = fixedClock{}

func newTestApp(t *testing.T, cfg *config.Config, stdin string) *testApp {
	t.Helper()

	ta := &testApp{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	ta.app = NewApp(Dependencies{
		Config: config.StaticProvider{Config: cfg},
		Clock:  fixedClock{},
		Stdout: ta.stdout,
		Stderr: ta.stderr,
		Stdin:  strings.NewReader(stdin),
	})
	return ta
}

func (ta *testApp) execute(args ...string) error {
	root := NewRootCommand(ta.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func virtualConfig(run string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Linter.Run = run
	cfg.Linter.Runtime = config.RuntimeVirtual
	return cfg
}

// writeServices creates service1 and service2 modules plus a docs directory
// outside every module, and returns the fixture root.
func writeServices(t *testing.T, extra map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"service1/go.mod":   "module service1\n",
		"service1/a.go":     "package service1\n",
		"service1/pkg/b.go": "package pkg\n",
		"service2/go.mod":   "module service2\n",
		"service2/c.go":     "package service2\n",
		"docs/readme.md":    "# docs\n",
	}
	for k, v := range extra {
		files[k] = v
	}
	testutil.WriteTree(t, dir, files)
	return dir
}

func TestRun_TwoServicesPass(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, nil)
	ta := newTestApp(t, virtualConfig(failingLinter), "")

	err := ta.execute("run",
		filepath.Join(dir, "service1", "a.go"),
		filepath.Join(dir, "service2", "c.go"),
		filepath.Join(dir, "service1", "pkg", "b.go"),
	)
	if err != nil {
		t.Fatalf("run error = %v\nstderr:\n%s", err, ta.stderr)
	}

	out := ta.stdout.String()
	first := strings.Index(out, "clean "+filepath.Join(dir, "service1"))
	second := strings.Index(out, "clean "+filepath.Join(dir, "service2"))
	if first < 0 || second < 0 || first > second {
		t.Errorf("linter output = %q, want service1 then service2", out)
	}
	if strings.Count(out, "clean ") != 2 {
		t.Errorf("linter ran %d times, want 2", strings.Count(out, "clean "))
	}
	if !strings.Contains(ta.stderr.String(), "2 module(s): 2 passed, 0 failed") {
		t.Errorf("summary missing from stderr:\n%s", ta.stderr)
	}
}

func TestRun_FailureContinuesAndReturnsExitCode(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, map[string]string{"service1/FAIL": ""})
	ta := newTestApp(t, virtualConfig(failingLinter), "")

	err := ta.execute("run",
		filepath.Join(dir, "service1", "a.go"),
		filepath.Join(dir, "service2", "c.go"),
	)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("run error = %v, want *ExitError", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("exit code = %d, want 3", exitErr.Code)
	}
	if !errors.Is(err, lint.ErrModuleFailed) {
		t.Errorf("run error should wrap lint.ErrModuleFailed: %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "clean "+filepath.Join(dir, "service2")) {
		t.Errorf("service2 should still be linted, stdout = %q", ta.stdout)
	}
	if !strings.Contains(ta.stderr.String(), "2 module(s): 1 passed, 1 failed") {
		t.Errorf("summary missing from stderr:\n%s", ta.stderr)
	}
}

func TestRun_FailFastSkipsRemainingModules(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, map[string]string{"service1/FAIL": ""})
	ta := newTestApp(t, virtualConfig(failingLinter), "")

	err := ta.execute("run", "--fail-fast",
		filepath.Join(dir, "service1", "a.go"),
		filepath.Join(dir, "service2", "c.go"),
	)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("run error = %v, want exit 3", err)
	}
	if strings.Contains(ta.stdout.String(), "clean") {
		t.Errorf("service2 should not run with --fail-fast, stdout = %q", ta.stdout)
	}
	if !strings.Contains(ta.stderr.String(), "1 skipped") {
		t.Errorf("summary should report the skipped module:\n%s", ta.stderr)
	}
}

func TestRun_FileOutsideModulesIsIgnored(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, nil)
	ta := newTestApp(t, virtualConfig(failingLinter), "")

	if err := ta.execute("run", filepath.Join(dir, "docs", "readme.md")); err != nil {
		t.Fatalf("run error = %v", err)
	}
	if ta.stdout.Len() != 0 {
		t.Errorf("linter should not run, stdout = %q", ta.stdout)
	}
	if !strings.Contains(ta.stderr.String(), "No module roots to lint.") {
		t.Errorf("stderr = %q", ta.stderr)
	}
}

func TestRun_EmptyInputSucceeds(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, virtualConfig("exit 1"), "")
	if err := ta.execute("run"); err != nil {
		t.Fatalf("run with no files error = %v", err)
	}
	if ta.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", ta.stdout)
	}
}

func TestRun_Stdin(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, nil)
	list := filepath.Join(dir, "service2", "c.go") + "\n" + filepath.Join(dir, "service2", "go.mod") + "\n"
	ta := newTestApp(t, virtualConfig(failingLinter), list)

	if err := ta.execute("run", "--stdin"); err != nil {
		t.Fatalf("run --stdin error = %v", err)
	}
	if got := strings.Count(ta.stdout.String(), "clean "+filepath.Join(dir, "service2")); got != 1 {
		t.Errorf("service2 linted %d times, want 1; stdout = %q", got, ta.stdout)
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, map[string]string{"service1/FAIL": ""})
	ta := newTestApp(t, virtualConfig(failingLinter), "")

	err := ta.execute("run", "--dry-run",
		filepath.Join(dir, "service1", "a.go"),
		filepath.Join(dir, "service2", "c.go"),
	)
	if err != nil {
		t.Fatalf("run --dry-run error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(ta.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("dry run printed %d lines, want 2: %q", len(lines), ta.stdout)
	}
	if !strings.HasPrefix(lines[0], filepath.Join(dir, "service1")) || !strings.Contains(lines[0], failingLinter) {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], filepath.Join(dir, "service2")) {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestRun_MarkerFlagOverridesConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"app/package.json": "{}\n",
		"app/src/x.js":     "",
		"go.mod":           "module root\n",
	})
	ta := newTestApp(t, virtualConfig(failingLinter), "")

	if err := ta.execute("roots", "--marker", "package.json", filepath.Join(dir, "app", "src", "x.js")); err != nil {
		t.Fatalf("roots error = %v", err)
	}
	if got := strings.TrimSpace(ta.stdout.String()); got != filepath.Join(dir, "app") {
		t.Errorf("roots = %q, want %q", got, filepath.Join(dir, "app"))
	}
}

func TestRun_MissingLinterIsActionable(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, nil)
	ta := newTestApp(t, virtualConfig("modhook-test-no-such-linter run"), "")

	err := ta.execute("run", filepath.Join(dir, "service1", "a.go"))

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("run error = %v, want *issue.ActionableError", err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("environment failures must not be reported as linter failures: %v", err)
	}
	if !ae.HasSuggestions() {
		t.Error("missing linter error should carry suggestions")
	}
}

func TestRun_ConflictingSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "staged and modified", args: []string{"run", "--staged", "--modified"}},
		{name: "staged and files", args: []string{"run", "--staged", "a.go"}},
		{name: "modified and stdin", args: []string{"roots", "--modified", "--stdin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ta := newTestApp(t, nil, "")
			if err := ta.execute(tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestRoots_OrderAndDedup(t *testing.T) {
	t.Parallel()

	dir := writeServices(t, nil)
	ta := newTestApp(t, nil, "")

	err := ta.execute("roots",
		filepath.Join(dir, "service2", "c.go"),
		filepath.Join(dir, "docs", "readme.md"),
		filepath.Join(dir, "service1", "pkg", "b.go"),
		filepath.Join(dir, "service2", "go.mod"),
		filepath.Join(dir, "service1", "a.go"),
	)
	if err != nil {
		t.Fatalf("roots error = %v", err)
	}

	want := filepath.Join(dir, "service2") + "\n" + filepath.Join(dir, "service1") + "\n"
	if got := ta.stdout.String(); got != want {
		t.Errorf("roots output = %q, want %q", got, want)
	}
}

// Not parallel: changes the working directory.
func TestRoots_StagedFromSubdirectory(t *testing.T) {
	dir := writeServices(t, nil)
	repo := testutil.InitRepo(t, dir)
	testutil.StageFiles(t, repo, "service1/go.mod", "service1/a.go", "service2/go.mod", "service2/c.go")
	testutil.Commit(t, repo, "initial")

	testutil.WriteTree(t, dir, map[string]string{
		"service2/c.go":  "package service2 // changed\n",
		"docs/readme.md": "# changed\n",
	})
	testutil.StageFiles(t, repo, "service2/c.go", "docs/readme.md")

	defer testutil.MustChdir(t, filepath.Join(dir, "service1"))()

	ta := newTestApp(t, nil, "")
	if err := ta.execute("roots", "--staged"); err != nil {
		t.Fatalf("roots --staged error = %v", err)
	}
	if got := strings.TrimSpace(ta.stdout.String()); got != "service2" {
		t.Errorf("roots --staged = %q, want %q", got, "service2")
	}
}

// Not parallel: changes the working directory and the environment.
func TestRun_StagedFromSubdirectoryReadsWorktreeConfig(t *testing.T) {
	dir := writeServices(t, map[string]string{
		config.ProjectFileName: `linter: {
	run:     "echo linted ${MODHOOK_MODULE_ROOT##*/}"
	runtime: "virtual"
}
`,
	})
	repo := testutil.InitRepo(t, dir)
	testutil.StageFiles(t, repo, "service1/a.go")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	defer testutil.MustChdir(t, filepath.Join(dir, "service2"))()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewApp(Dependencies{Clock: fixedClock{}, Stdout: stdout, Stderr: stderr, Stdin: strings.NewReader("")})
	root := NewRootCommand(app)
	root.SetArgs([]string{"run", "--staged"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run --staged error = %v\nstderr:\n%s", err, stderr)
	}
	if got := stdout.String(); !strings.Contains(got, "linted service1") || strings.Contains(got, "service2") {
		t.Errorf("linter output = %q, want only %q", got, "linted service1")
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil, "")
	if err := ta.execute("version"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(ta.stdout.String(), "modhook ") {
		t.Errorf("version output = %q", ta.stdout)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("linter failed in 1 module(s)")
	err := &ExitError{Code: types.ExitCode(3), Err: cause}
	if err.Error() != cause.Error() || !errors.Is(err, cause) {
		t.Errorf("ExitError should expose its cause, got %q", err.Error())
	}
	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q, want %q", got, "exit status 2")
	}
}
