// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/modhook/modhook/internal/lint"
)

// renderSummary lists every module outcome followed by the totals.
func renderSummary(p palette, report *lint.Report) string {
	width := 0
	for _, res := range report.Results {
		width = max(width, len(res.Root.String()))
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for _, res := range report.Results {
		root := fmt.Sprintf("%-*s", width, res.Root)
		switch res.Status {
		case lint.StatusPassed:
			fmt.Fprintf(&sb, "%s %s  %s\n", p.success.Render("✓"), root, p.subtitle.Render(formatDuration(res.Duration)))
		case lint.StatusFailed:
			fmt.Fprintf(&sb, "%s %s  %s  %s\n", p.failure.Render("✗"), root, p.failure.Render(fmt.Sprintf("exit %d", res.ExitCode)), p.subtitle.Render(formatDuration(res.Duration)))
		case lint.StatusTimedOut:
			fmt.Fprintf(&sb, "%s %s  %s  %s\n", p.failure.Render("✗"), root, p.warning.Render("timed out"), p.subtitle.Render(formatDuration(res.Duration)))
		case lint.StatusSkipped:
			fmt.Fprintf(&sb, "%s %s  %s\n", p.warning.Render("-"), root, p.warning.Render("skipped"))
		}
	}

	failed := len(report.Failed())
	totals := fmt.Sprintf("%d module(s): %d passed, %d failed", len(report.Results), report.Count(lint.StatusPassed), failed)
	if skipped := report.Count(lint.StatusSkipped); skipped > 0 {
		totals += fmt.Sprintf(", %d skipped", skipped)
	}
	if failed > 0 {
		sb.WriteString(p.failure.Render(totals))
	} else {
		sb.WriteString(p.success.Render(totals))
	}
	sb.WriteString("\n")

	return sb.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
