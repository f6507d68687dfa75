// File: internal/interval/format.go
package interval

import (
	"fmt"
	"time"
)

// FormatDuration renders d in its two coarsest units, truncated to whole
// seconds: "1 hour(s) 5 minute(s)", "4 minute(s) 2 second(s)", "9 second(s)".
// Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour(s) %d minute(s)", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%d minute(s) %d second(s)", minutes, seconds%60)
	default:
		return fmt.Sprintf("%d second(s)", seconds)
	}
}
