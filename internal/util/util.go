// Package util holds small formatting and validation helpers shared by the
// use cases and the command line.
package util

import (
	"fmt"
	"time"
)

// FormatBytes renders a size the way limits are shown to users, e.g. "5.0 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	value := float64(n)
	suffix := ' '
	for _, s := range "KMGT" {
		value /= unit
		suffix = s
		if value < unit {
			break
		}
	}

	return fmt.Sprintf("%.1f %cB", value, suffix)
}

// FormatDuration renders a wait time compactly, e.g. "45s", "2m30s", "1h30m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
