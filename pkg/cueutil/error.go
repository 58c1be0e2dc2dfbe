// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	stderrors "errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize bounds the size of CUE files read from disk.
const DefaultMaxFileSize int64 = 1 << 20

// FormatError prefixes each CUE error with the file and the JSON-style path
// of the offending field:
//
//	modhook.cue: markers[0]: invalid value "" (out of bound !="")
//	config.cue: linter.runtime: conflicting values "native" and "docker"
//
// Non-CUE errors are wrapped with the file name only.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	var cueErr errors.Error
	if !stderrors.As(err, &cueErr) {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	list := errors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		lines = append(lines, formatOne(e))
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

func formatOne(e errors.Error) string {
	path := formatPath(errors.Path(e))
	msg := e.Error()
	if path == "" {
		return msg
	}
	// CUE sometimes repeats the path at the start of the message.
	if rest, ok := strings.CutPrefix(msg, path); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return path + ": " + msg
}

// formatPath renders ["markers", "0"] as "markers[0]".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			sb.WriteString("[" + part + "]")
		case i > 0:
			sb.WriteString("." + part)
		default:
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

// CheckFileSize fails when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if n := int64(len(data)); n > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, n, maxSize)
	}
	return nil
}
