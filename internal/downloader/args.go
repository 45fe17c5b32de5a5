package downloader

import (
	"mediafetch/internal/model"
	"mediafetch/internal/progress"
)

const (
	videoFormat = "bv*[height<=720]+ba/best"
	audioFormat = "ba[ext=m4a]/ba[ext=mp3]/ba/bestaudio"
)

// BuildArgs assembles the yt-dlp argument list. Extra arguments are
// appended verbatim and the URL always comes last, after "--" so it can
// never be read as an option.
func BuildArgs(mode model.Mode, outTemplate string, extra []string, url string) []string {
	var args []string
	switch mode {
	case model.ModeAudio:
		args = []string{
			"-f", audioFormat,
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", "128K",
		}
	default:
		args = []string{"-f", videoFormat}
	}
	args = append(args,
		"-o", outTemplate,
		"--progress",
		"--newline",
		"--progress-template", progress.TemplateArg,
		"--print", "after_move:filepath",
	)
	args = append(args, extra...)
	return append(args, "--", url)
}
