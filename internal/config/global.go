// SPDX-License-Identifier: MPL-2.0

package config

import "sync"

// dirOverride replaces the platform config directory in tests, where
// os.UserHomeDir does not follow HOME on every OS.
var dirOverride struct {
	sync.RWMutex
	dir string
}

// SetConfigDirOverride makes ConfigDir return dir.
func SetConfigDirOverride(dir string) {
	dirOverride.Lock()
	defer dirOverride.Unlock()
	dirOverride.dir = dir
}

// Reset clears the override set by SetConfigDirOverride.
func Reset() { SetConfigDirOverride("") }

func configDirOverride() string {
	dirOverride.RLock()
	defer dirOverride.RUnlock()
	return dirOverride.dir
}
