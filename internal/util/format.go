package util

import "fmt"

// FormatTime formats a whole number of seconds as m:ss. Minutes are not
// padded and grow past 59.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatMillis formats a millisecond position as m:ss.
func FormatMillis(ms int) string {
	return FormatTime(ms / 1000)
}
