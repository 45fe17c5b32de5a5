// Package downloader supervises one yt-dlp process per job: it builds the
// invocation, turns the process output into throttled progress updates,
// and classifies the exit into a terminal outcome.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediafetch/internal/clock"
	"mediafetch/internal/lines"
	"mediafetch/internal/logging"
	"mediafetch/internal/model"
	"mediafetch/internal/notify"
	"mediafetch/internal/progress"
	"mediafetch/internal/tail"
	"mediafetch/internal/util"
	"mediafetch/internal/util/media"
)

// Options controls how jobs are run. DownloaderPath and DownloadDir are
// required; everything else has a usable zero value.
type Options struct {
	DownloaderPath string
	DownloadDir    string
	ExtraArgs      []string

	// Artifacts strictly smaller than InlineMaxBytes are offered to the
	// Deliverer. Larger ones stay on disk and are reported as links.
	InlineMaxBytes int64
	// Timeout kills the process after the given runtime; 0 disables it.
	Timeout time.Duration

	Notifier  notify.Notifier
	Deliverer notify.Deliverer
	Links     func(name string) model.Links

	// ProgressInterval and IdleEvery tune the progress throttler; zero
	// keeps its defaults.
	ProgressInterval time.Duration
	IdleEvery        time.Duration

	Clock   clock.Clock
	NewID   func() string
	TailCap int
}

// failureHintCode is the yt-dlp exit status that usually means bad input.
const failureHintCode = 2

const failureHint = "\nHint: check that the link is public and reachable, update yt-dlp and make sure ffmpeg is installed."

// job is the mutable state of one run. It is owned by the goroutine
// executing Run; only the throttler is shared with the idle ticker.
type job struct {
	id    string
	req   model.Request
	opts  Options
	log   *slog.Logger
	note  notify.Safe
	msg   notify.Handle
	state model.State

	throttle *progress.Throttler
	tail     *tail.Buffer
	path     string // captured from --print, at most once
}

// Run executes one job to completion and returns its outcome. Outward
// notification failures never affect the result. The process is not
// tied to ctx cancellation; only the optional Timeout stops it early.
func Run(ctx context.Context, req model.Request, opts Options) model.Outcome {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if !req.Mode.Valid() {
		req.Mode = model.DefaultMode
	}

	j := &job{
		id:    opts.NewID(),
		req:   req,
		opts:  opts,
		note:  notify.Safe{Inner: opts.Notifier},
		state: model.StateStarting,
		tail:  tail.New(opts.TailCap),
	}
	j.log = logging.FromContext(ctx).With("job", j.id)
	ctx = logging.Context(ctx, j.log)
	return j.run(ctx)
}

func (j *job) run(ctx context.Context) model.Outcome {
	prefix := media.NamingPrefix(j.req.UserID, j.req.ChatID, j.opts.Clock.Now())
	args := BuildArgs(j.req.Mode, media.OutputTemplate(j.opts.DownloadDir, prefix), j.opts.ExtraArgs, j.req.URL)
	j.log.Info("job starting", "mode", j.req.Mode, "url", j.req.URL, "prefix", prefix)
	j.log.Debug("invocation", "cmd", util.ShellQuote(j.opts.DownloaderPath, args))

	j.msg = j.note.SendInitial(ctx, initialText(j.req.Mode))
	j.throttle = progress.NewThrottler(func(u progress.Update) {
		j.note.Edit(ctx, j.msg, u.Text, notify.Options{Percent: u.Percent})
	},
		progress.WithClock(j.opts.Clock),
		progress.WithLabel(label(j.req.Mode)),
		progress.WithMinInterval(j.opts.ProgressInterval),
		progress.WithIdleEvery(j.opts.IdleEvery),
	)
	stopIdle := j.throttle.StartIdle()
	defer stopIdle()

	runCtx := context.WithoutCancel(ctx)
	if j.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, j.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, j.opts.DownloaderPath, args...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1", "FORCE_COLOR=0")
	killGroupOnCancel(cmd)
	stdout, errOut, err := pipes(cmd)
	if err == nil {
		err = cmd.Start()
	}
	if err != nil {
		stopIdle()
		return j.crashed(ctx, err)
	}

	j.state = model.StateRunning
	j.consume(stdout, errOut)
	waitErr := cmd.Wait()
	stopIdle()

	code := util.ExitCode(waitErr)
	j.log.Info("downloader exited", "code", code)
	if code != 0 {
		timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
		return j.failed(ctx, code, timedOut)
	}
	return j.succeeded(ctx)
}

func pipes(cmd *exec.Cmd) (io.ReadCloser, io.ReadCloser, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	return stdout, stderr, nil
}

type streamID int

const (
	streamStdout streamID = iota
	streamStderr
)

type chunk struct {
	stream streamID
	data   []byte
	eof    bool
}

// consume reads both pipes on dedicated goroutines and handles every
// line on the calling goroutine, in arrival order per stream. It returns
// once both streams reached EOF.
func (j *job) consume(stdout, stderr io.Reader) {
	events := make(chan chunk, 16)
	read := func(id streamID, r io.Reader) {
		for {
			buf := make([]byte, 32*1024)
			n, err := r.Read(buf)
			if n > 0 {
				events <- chunk{stream: id, data: buf[:n]}
			}
			if err != nil {
				events <- chunk{stream: id, eof: true}
				return
			}
		}
	}
	go read(streamStdout, stdout)
	go read(streamStderr, stderr)

	framers := [2]lines.Framer{}
	handle := [2]func(string){j.stdoutLine, j.stderrLine}
	for open := 2; open > 0; {
		c := <-events
		if c.eof {
			open--
			if rest, ok := framers[c.stream].Flush(); ok {
				handle[c.stream](rest)
			}
			continue
		}
		for _, l := range framers[c.stream].Feed(c.data) {
			handle[c.stream](l)
		}
	}
}

// stdoutLine handles template progress, bracketed progress lines, and the
// bare final path printed by --print after_move:filepath.
func (j *job) stdoutLine(raw string) {
	line := progress.Clean(raw)
	if line == "" {
		return
	}
	if ev, ok := progress.ParseTemplate(line); ok {
		j.throttle.ObserveEvent(ev)
		return
	}
	if !strings.HasPrefix(line, "[") {
		if j.path == "" && util.IsRegularFile(line) {
			j.path = line
			j.log.Debug("captured output path", "path", line)
		}
		return
	}
	if ev, ok := progress.ParseBracketed(line); ok {
		j.throttle.ObserveEvent(ev)
	}
}

// stderrLine feeds progress parsers and always records the line in the
// error tail.
func (j *job) stderrLine(raw string) {
	line := progress.Clean(raw)
	if line == "" {
		return
	}
	if ev, ok := progress.Parse(line, progress.ParseTemplate, progress.ParseBracketed); ok {
		j.throttle.ObserveEvent(ev)
	}
	j.tail.Add(line)
}

func (j *job) outcome(state model.State, code int, err error) model.Outcome {
	j.state = state
	return model.Outcome{JobID: j.id, State: state, ExitCode: code, Err: err}
}

var failedEdit = notify.Options{Percent: -1, Final: true, Failed: true}

func (j *job) crashed(ctx context.Context, err error) model.Outcome {
	j.log.Error("could not start downloader", "error", err)
	j.note.Edit(ctx, j.msg, "Could not start download: "+err.Error(), failedEdit)
	return j.outcome(model.StateCrashed, -1, fmt.Errorf("%w: %v", model.ErrLaunch, err))
}

func (j *job) failed(ctx context.Context, code int, timedOut bool) model.Outcome {
	text := failureText(code, j.tail.Lines(), j.opts.DownloadDir)
	if timedOut {
		text = fmt.Sprintf("Download stopped after %s.\n", j.opts.Timeout) + text
	}
	j.note.Edit(ctx, j.msg, text, failedEdit)
	return j.outcome(model.StateFailed, code, fmt.Errorf("%w: exit code %d", model.ErrProcess, code))
}

func (j *job) succeeded(ctx context.Context) model.Outcome {
	art, err := Resolve(ctx, j.path, j.opts.DownloadDir)
	if err != nil {
		j.log.Warn("artifact not found", "error", err)
		j.note.Edit(ctx, j.msg, "Could not find the downloaded file.", failedEdit)
		return j.outcome(model.StateFailed, 0, err)
	}
	j.log.Info("artifact resolved", "name", art.Name, "size", art.Size)

	out := j.outcome(model.StateSucceeded, 0, nil)
	out.Artifact = &art
	if err := j.report(ctx, &out); err != nil {
		j.log.Error("reporting failed", "error", err)
		j.note.Edit(ctx, j.msg, "Error while sending: "+err.Error(), failedEdit)
		out.State = model.StateFailed
		out.Err = fmt.Errorf("%w: %v", model.ErrReport, err)
		j.state = model.StateFailed
	}
	return out
}
