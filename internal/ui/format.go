package ui

import "fmt"

// FormatDuration renders a second count as m:ss for the countdown display.
// Negative values clamp to 0:00.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
