// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modhook/modhook/pkg/platform"
)

// ErrInvalidMarkerName is the sentinel error wrapped by InvalidMarkerNameError.
var ErrInvalidMarkerName = errors.New("invalid marker name")

type (
	// MarkerName is the bare file name whose presence marks a directory as a
	// module root (e.g., "go.mod"). It must be a single path element.
	MarkerName string

	// InvalidMarkerNameError is returned when a MarkerName is not a usable
	// single file name.
	InvalidMarkerNameError struct {
		Value  MarkerName
		Reason string
	}
)

// DefaultMarkerName is the marker used when none is configured.
const DefaultMarkerName MarkerName = "go.mod"

// String returns the string representation of the MarkerName.
func (m MarkerName) String() string { return string(m) }

// Validate returns an error if the MarkerName is not a single path element.
func (m MarkerName) Validate() error {
	s := string(m)
	switch {
	case strings.TrimSpace(s) == "":
		return &InvalidMarkerNameError{Value: m, Reason: "must be non-empty"}
	case strings.ContainsAny(s, `/\`):
		return &InvalidMarkerNameError{Value: m, Reason: "must not contain path separators"}
	case s == "." || s == "..":
		return &InvalidMarkerNameError{Value: m, Reason: "must name a file"}
	case platform.IsWindowsReservedName(s):
		// Device names stat as present in every directory.
		return &InvalidMarkerNameError{Value: m, Reason: "is a reserved device name on Windows"}
	}
	return nil
}

// Error implements the error interface for InvalidMarkerNameError.
func (e *InvalidMarkerNameError) Error() string {
	return fmt.Sprintf("invalid marker name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidMarkerName for errors.Is() compatibility.
func (e *InvalidMarkerNameError) Unwrap() error { return ErrInvalidMarkerName }

// MarkersFromStrings converts raw strings into MarkerName values and
// validates each of them.
func MarkersFromStrings(raw []string) ([]MarkerName, error) {
	out := make([]MarkerName, 0, len(raw))
	for _, s := range raw {
		m := MarkerName(s)
		if err := m.Validate(); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
