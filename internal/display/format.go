// Package display formats human-facing output: the banner, file sizes, and
// the per-stage summary lines of a production report.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/eeemcal/beamprod/internal/term"
)

// FormatBytes returns a human-readable size in IEC units (B, KiB, MiB, ...).
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatDuration rounds d for display: milliseconds below one second,
// tenths of a second below a minute, whole seconds above.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// StageLine renders one row of the stage summary, e.g.
// "  decode     ok       12.3s". status is colored when colors are on.
func StageLine(stage, status string, d time.Duration) string {
	color := ""
	switch status {
	case "ok":
		color = term.Green
	case "failed":
		color = term.Red
	case "skipped":
		color = term.Yellow
	}
	pad := strings.Repeat(" ", max(0, 8-len(status)))
	line := fmt.Sprintf("  %-10s %s%s%s%s", stage, color, status, resetIf(color), pad)
	if d > 0 {
		line += " " + FormatDuration(d)
	}
	return strings.TrimRight(line, " ")
}

func resetIf(color string) string {
	if color == "" {
		return ""
	}
	return term.NC
}
