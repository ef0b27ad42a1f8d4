package display

import (
	"fmt"
)

var byteUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatBytes renders n with a binary unit, one decimal above 1 KiB.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[unit])
}

// FormatBytesWithSign renders a size change: "- 1.2 KiB" for a file that
// shrank, "+ 3 B" for one that grew, "0 B" for no change.
func FormatBytesWithSign(delta int64) string {
	switch {
	case delta < 0:
		return "- " + FormatBytes(-delta)
	case delta > 0:
		return "+ " + FormatBytes(delta)
	}
	return FormatBytes(0)
}

// FormatPercent returns part as a whole-number percentage of whole
// ("100%" when whole is zero).
func FormatPercent(part, whole int64) string {
	if whole <= 0 {
		return "100%"
	}
	return fmt.Sprintf("%d%%", part*100/whole)
}
