// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

// buildEnv builds the environment for one invocation with this precedence:
//  1. Host environment
//  2. EnvFiles (loaded in order, resolved against the module root)
//  3. Env (static variables)
//  4. MODHOOK_MODULE_ROOT (absolute module root)
func buildEnv(ctx *ExecutionContext, root types.FilesystemPath) (map[string]string, error) {
	overlay, err := overlayEnv(ctx, root)
	if err != nil {
		return nil, err
	}
	env := hostEnv()
	maps.Copy(env, overlay)
	return env, nil
}

// overlayEnv returns the variables layered on top of the host environment.
func overlayEnv(ctx *ExecutionContext, root types.FilesystemPath) (map[string]string, error) {
	env := make(map[string]string)
	for _, path := range ctx.EnvFiles {
		if err := LoadEnvFile(env, path, root); err != nil {
			return nil, err
		}
	}

	maps.Copy(env, ctx.Env)
	env[EnvModuleRoot] = root.String()

	return env, nil
}

func hostEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		// Windows keeps per-drive working directories as "=C:=C:\dir".
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	return env
}

// LoadEnvFile loads a dotenv file and merges its contents into env.
// Relative paths are resolved against root. Paths suffixed with '?' are
// optional; a missing optional file is not an error.
func LoadEnvFile(env map[string]string, path string, root types.FilesystemPath) error {
	optional := strings.HasSuffix(path, "?")
	path = strings.TrimSuffix(path, "?")

	full := fspath.FromSlash(types.FilesystemPath(path))
	if !fspath.IsAbs(full) {
		full = fspath.Join(root, full)
	}

	f, err := os.Open(full.String())
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file '%s': %w", path, err)
	}
	defer func() { _ = f.Close() }() // Read-only file; close error is non-actionable

	parsed, err := gotenv.StrictParse(f)
	if err != nil {
		return fmt.Errorf("failed to parse env file '%s': %w", path, err)
	}
	maps.Copy(env, parsed)
	return nil
}

// EnvToSlice converts a map of environment variables to a sorted KEY=VALUE slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		result = append(result, k+"="+env[k])
	}
	return result
}
