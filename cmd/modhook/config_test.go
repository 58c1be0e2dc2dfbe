// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modhook/modhook/internal/config"
	"github.com/modhook/modhook/internal/testutil"
)

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Exclude = []string{"vendor/**"}
	cfg.Linter.Timeout = "2m"
	cfg.Linter.Env = map[string]string{"GOFLAGS": "-mod=mod"}

	ta := newTestApp(t, cfg, "")
	if err := ta.execute("config", "show", "--config", writeConfigFile(t, "")); err != nil {
		t.Fatalf("config show error = %v", err)
	}

	out := ta.stdout.String()
	for _, want := range []string{
		"Current Configuration",
		"markers: go.mod",
		"exclude: vendor/**",
		"run: " + config.DefaultLinterCommand,
		"runtime: native",
		"timeout: 2m",
		"GOFLAGS=-mod=mod",
		"color_scheme: auto",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Markers = []string{"go.mod", "go.work"}
	ta := newTestApp(t, cfg, "")

	if err := ta.execute("config", "dump"); err != nil {
		t.Fatalf("config dump error = %v", err)
	}
	if got, want := ta.stdout.String(), config.GenerateCUE(cfg); got != want {
		t.Errorf("config dump = %q, want %q", got, want)
	}
}

// Not parallel: config init writes to the working directory.
func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	defer testutil.MustChdir(t, dir)()

	ta := newTestApp(t, nil, "")
	if err := ta.execute("config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, config.ProjectFileName))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if string(data) != config.GenerateCUE(config.DefaultConfig()) {
		t.Errorf("config init wrote %q", data)
	}

	// A second init must not clobber the file.
	if err := ta.execute("config", "init"); err == nil {
		t.Error("config init over an existing file should fail without --force")
	}
	if err := ta.execute("config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}
}

// Not parallel: overrides the user config directory.
func TestConfigInit_Global(t *testing.T) {
	dir := t.TempDir()
	config.SetConfigDirOverride(dir)
	t.Cleanup(config.Reset)

	ta := newTestApp(t, nil, "")
	if err := ta.execute("config", "init", "--global"); err != nil {
		t.Fatalf("config init --global error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.cue")); err != nil {
		t.Errorf("user config not written: %v", err)
	}

	if !strings.Contains(ta.stdout.String(), filepath.Join(dir, "config.cue")) {
		t.Errorf("config init output = %q, want the written path", ta.stdout)
	}
}

func TestConfigPath_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil, "")
	missing := filepath.Join(t.TempDir(), "nope.cue")
	if err := ta.execute("config", "path", "--config", missing); err == nil {
		t.Error("config path with a missing --config file should fail")
	}
}

// writeConfigFile writes a config file and returns its path. The content is
// only inspected by path lookups; values come from the test provider.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "modhook.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
