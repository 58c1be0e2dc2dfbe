// SPDX-License-Identifier: MPL-2.0

// Package logging builds the structured logger used across modhook.
//
// Records go through log/slog; the handler is a charmbracelet/log logger so
// terminal output stays compact and colored. The logger travels in the
// context so packages never reach for a global.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "modhook"

type loggerContextKey struct{}

// Options controls how New builds a logger.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// Timestamps adds a timestamp to every line.
	Timestamps bool
}

// New returns a slog.Logger writing to w through a charmbracelet/log handler.
func New(w io.Writer, opts Options) *slog.Logger {
	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: opts.Timestamps,
	})
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext returns the logger stored in ctx, or a discarding logger when
// none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return Discard()
}
