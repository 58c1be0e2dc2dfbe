// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/modhook/modhook/internal/config"
)

// Color palette shared by help text, summaries and error output.
const (
	// ColorPrimary is purple - used for titles and module headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorSuccess is green - used for passing modules.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for failing modules and errors.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for skipped and timed out modules.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for commands and paths.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// ColorMuted is used for secondary text. It needs more contrast on light
// backgrounds than on dark ones.
var ColorMuted = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#6B7280"}

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// palette holds the styles bound to one output stream, so color is only
// emitted when that stream supports it.
type palette struct {
	title    lipgloss.Style
	subtitle lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	warning  lipgloss.Style
	cmd      lipgloss.Style
}

func newPalette(w io.Writer, scheme config.ColorScheme) palette {
	r := lipgloss.NewRenderer(w)
	switch scheme {
	case config.ColorSchemeDark:
		r.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		r.SetHasDarkBackground(false)
	}

	return palette{
		title:    r.NewStyle().Bold(true).Foreground(ColorPrimary),
		subtitle: r.NewStyle().Foreground(ColorMuted),
		success:  r.NewStyle().Foreground(ColorSuccess),
		failure:  r.NewStyle().Bold(true).Foreground(ColorError),
		warning:  r.NewStyle().Foreground(ColorWarning),
		cmd:      r.NewStyle().Foreground(ColorHighlight),
	}
}
