package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"mediafetch/internal/util"
)

var ErrNotFound = errors.New("dependency not found")

// FindDownloader resolves the yt-dlp executable. A custom value may be a
// path or a name looked up in PATH.
func FindDownloader(customPath string) (string, error) {
	if customPath == "" {
		customPath = "yt-dlp"
	}
	if fi, err := os.Stat(customPath); err == nil && !fi.IsDir() {
		return customPath, nil
	}
	if p, err := exec.LookPath(customPath); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find downloader %q, install yt-dlp or set ytdlp_path", ErrNotFound, customPath)
}

// FindFFmpeg returns the path to the ffmpeg binary in PATH.
func FindFFmpeg() (string, error) {
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find ffmpeg in PATH, merging formats may fail", ErrNotFound)
}

// Probe runs bin with args and returns the first line of its output,
// typically a version string.
func Probe(ctx context.Context, bin string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	res, err := util.Run(ctx, util.CmdSpec{Path: bin, Args: args})
	if err != nil {
		if msg := strings.TrimSpace(string(res.Stderr)); msg != "" {
			return "", fmt.Errorf("%w: %s", err, firstLine(msg))
		}
		return "", err
	}
	return firstLine(strings.TrimSpace(string(res.Stdout))), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
