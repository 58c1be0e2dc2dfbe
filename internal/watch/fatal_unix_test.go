// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "watch limit", err: syscall.ENOSPC, want: true},
		{name: "process fd limit", err: syscall.EMFILE, want: true},
		{name: "system fd limit", err: syscall.ENFILE, want: true},
		{name: "wrapped", err: fmt.Errorf("inotify: %w", syscall.ENOSPC), want: true},
		{name: "permission", err: syscall.EACCES, want: false},
		{name: "queue overflow", err: errors.New("fsnotify: queue or buffer overflow"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isFatal(tt.err); got != tt.want {
				t.Errorf("isFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
