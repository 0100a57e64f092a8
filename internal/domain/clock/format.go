package clock

import (
	"fmt"
	"time"
)

// FormatRemaining renders a countdown as H:MM:SS from one hour up and M:SS below.
// Partial seconds round up, so 0:00 is shown only once the time is really gone.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}

	total := int64((d + time.Second - 1) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
