// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"
)

// flatpakInfo exists inside every Flatpak sandbox.
const flatpakInfo = "/.flatpak-info"

// detectOnce caches the sandbox detection result for the lifetime of the
// process. detectSandboxFrom must not panic: sync.OnceValue re-panics on
// every later call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in. The result
// is cached after the first call.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand wraps argv so that it runs on the host, outside the sandbox st,
// in directory dir with the extra environment entries env (KEY=VALUE).
//
// Only Flatpak needs wrapping: flatpak-spawn --host forwards neither the
// working directory nor the environment, so both are passed explicitly.
// Snap and unsandboxed processes get argv back unchanged.
func HostCommand(st SandboxType, dir string, env, argv []string) []string {
	if st != SandboxFlatpak {
		return argv
	}
	wrapped := make([]string, 0, 3+len(env)+len(argv))
	wrapped = append(wrapped, "flatpak-spawn", "--host", "--directory="+dir)
	for _, kv := range env {
		wrapped = append(wrapped, "--env="+kv)
	}
	return append(wrapped, argv...)
}

// detectSandboxFrom performs sandbox detection using the provided lookup
// functions so tests can run it without touching process state.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// Flatpak takes precedence.
	if err := statFile(flatpakInfo); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
