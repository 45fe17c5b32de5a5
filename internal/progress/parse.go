package progress

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sentinel starts every line produced by TemplateArg.
const Sentinel = "PROGRESS"

// TemplateArg is the --progress-template value that makes yt-dlp print
// lines ParseTemplate understands.
const TemplateArg = Sentinel + " %(progress._percent_str)s %(progress._eta_str)s %(progress.speed)s %(progress.stage)s"

// Parser attempts to read a progress event from one output line.
// It reports false when the line is not in its grammar.
type Parser func(line string) (Event, bool)

// Parse runs parsers in order and returns the first match.
func Parse(line string, parsers ...Parser) (Event, bool) {
	for _, p := range parsers {
		if ev, ok := p(line); ok {
			return ev, true
		}
	}
	return Event{}, false
}

// Clean strips terminal escape sequences and surrounding whitespace.
func Clean(line string) string {
	return strings.TrimSpace(ansi.Strip(line))
}

// ParseTemplate reads lines of the form
//
//	PROGRESS 42.3% 00:30 2.32MiB/s downloading
//
// Lines with fewer than four fields after the sentinel, or with a
// percent that is not a finite number, do not match.
func ParseTemplate(line string) (Event, bool) {
	fields := strings.Fields(Clean(line))
	if len(fields) < 5 || fields[0] != Sentinel {
		return Event{}, false
	}

	p, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return Event{}, false
	}

	return Event{
		Percent: p,
		ETA:     fields[2],
		Speed:   fields[3],
		Stage:   normalizeStage(fields[4]),
	}, true
}

func normalizeStage(raw string) Stage {
	switch s := strings.ToLower(raw); {
	case s == "downloading":
		return StageDownloading
	case strings.Contains(s, "post"):
		return StagePostProcessing
	case strings.Contains(s, "merge"):
		return StageMerging
	default:
		return Stage(raw)
	}
}

var (
	percentRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)%`)
	speedRe   = regexp.MustCompile(`(\S+/s)`)
	etaRe     = regexp.MustCompile(`(?i)ETA\s([0-9:]+)`)
)

// ParseBracketed is the lenient fallback for yt-dlp's human readable
// progress, e.g.
//
//	[download]  42.3% of 69.62MiB at 2.32MiB/s ETA 00:30
//
// Any line containing a number followed by % matches; speed and ETA
// are picked up when present.
func ParseBracketed(line string) (Event, bool) {
	line = Clean(line)
	m := percentRe.FindStringSubmatch(line)
	if m == nil {
		return Event{}, false
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Event{}, false
	}

	ev := Event{Percent: p}
	if sm := speedRe.FindStringSubmatch(line); sm != nil {
		ev.Speed = sm[1]
	}
	if em := etaRe.FindStringSubmatch(line); em != nil {
		ev.ETA = em[1]
	}
	return ev, true
}
