// SPDX-License-Identifier: MPL-2.0

package platform

import "testing"

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"NUL uppercase", "NUL", true},
		{"nul lowercase", "nul", true},
		{"Con mixed case", "Con", true},
		{"COM1", "com1", true},
		{"LPT9", "LPT9", true},
		{"with extension", "nul.mod", true},
		{"with two extensions", "aux.tar.gz", true},

		{"go.mod", "go.mod", false},
		{"go.work", "go.work", false},
		{"contains reserved", "console.mod", false},
		{"COM10", "com10", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsWindowsReservedName(tt.input); got != tt.expected {
				t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
