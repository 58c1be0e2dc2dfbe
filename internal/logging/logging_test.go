// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
)

func TestNew_LevelFollowsVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet", verbose: false, wantDebug: false},
		{name: "verbose", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := New(&buf, Options{Verbose: tt.verbose})
			l.Debug("resolved module root", "root", "service1")
			l.Info("linting module", "root", "service2")

			out := buf.String()
			if got := strings.Contains(out, "resolved module root"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v; output:\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "linting module") {
				t.Errorf("info line missing; output:\n%s", out)
			}
			if !strings.Contains(out, Prefix) {
				t.Errorf("prefix %q missing; output:\n%s", Prefix, out)
			}
		})
	}
}

func TestNew_Timestamps(t *testing.T) {
	t.Parallel()

	stamp := regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} `)

	tests := []struct {
		name       string
		timestamps bool
	}{
		{name: "without", timestamps: false},
		{name: "with", timestamps: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			New(&buf, Options{Timestamps: tt.timestamps}).Info("watching", "dir", ".")

			if got := stamp.MatchString(buf.String()); got != tt.timestamps {
				t.Errorf("timestamp present = %v, want %v; output:\n%s", got, tt.timestamps, buf.String())
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext() without logger returned nil")
	}

	var buf bytes.Buffer
	l := New(&buf, Options{})
	ctx := WithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("FromContext() did not return the attached logger")
	}
}
