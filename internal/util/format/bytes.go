package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// MiB is the unit used for the inline delivery threshold.
const MiB = 1 << 20

// HumanizeBytes converts a byte count into a human-readable IEC string
// (e.g., "1.5 MiB").
func HumanizeBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.IBytes(uint64(b))
}

// MB renders a size in MiB with one decimal, as shown in job reports.
func MB(b int64) string {
	return fmt.Sprintf("%.1f MB", float64(b)/MiB)
}

// Age renders a file age as days and hours ("3d 4h") or hours ("5h").
func Age(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh", hours)
}

// Since is the humanized relative time, e.g. "3 days ago".
func Since(t time.Time) string {
	return humanize.Time(t)
}
