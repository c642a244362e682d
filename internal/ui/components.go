package ui

import (
	"math"
	"strings"
)

// progressBarWidth is the number of cells in the now-playing bar.
const progressBarWidth = 50

// progressFraction returns position/duration clamped to [0, 1], or 0 when
// the duration is not known yet.
func progressFraction(positionMs, durationMs int) float64 {
	if durationMs <= 0 {
		return 0
	}
	ratio := float64(positionMs) / float64(durationMs)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// filledCells returns how many of width cells a fraction fills, rounding down.
func filledCells(fraction float64, width int) int {
	return int(math.Floor(fraction * float64(width)))
}

func renderProgressBar(fraction float64) string {
	filled := filledCells(fraction, progressBarWidth)
	return barFilledStyle.Render(strings.Repeat("━", filled)) +
		barEmptyStyle.Render(strings.Repeat("─", progressBarWidth-filled))
}
