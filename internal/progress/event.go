package progress

import (
	"math"
	"strings"
)

// Stage identifies what the fetcher is doing when it reports progress.
type Stage string

const (
	StageDownloading    Stage = "downloading"
	StagePostProcessing Stage = "post-processing"
	StageMerging        Stage = "merging"
)

// Event is one progress observation parsed from a subprocess line.
// Percent keeps the parsed precision; use Rounded for display.
type Event struct {
	Percent float64
	Speed   string // optional, e.g. "2.32MiB/s"
	ETA     string // optional, e.g. "00:30"
	Stage   Stage  // optional
}

// Rounded floors Percent and clamps it to [0,100].
func (e Event) Rounded() int {
	return Clamp(e.Percent)
}

// Extra renders the optional fields as "stage · speed · ETA eta",
// skipping the ones that are empty.
func (e Event) Extra() string {
	parts := make([]string, 0, 3)
	if e.Stage != "" {
		parts = append(parts, string(e.Stage))
	}
	if e.Speed != "" {
		parts = append(parts, e.Speed)
	}
	if e.ETA != "" {
		parts = append(parts, "ETA "+e.ETA)
	}
	return strings.Join(parts, " · ")
}

// Clamp floors p and limits it to [0,100]. NaN maps to 0.
func Clamp(p float64) int {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(math.Floor(p))
}
