package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mediafetch/internal/dirs"
	"mediafetch/internal/downloader"
	"mediafetch/internal/logging"
	"mediafetch/internal/model"
	"mediafetch/internal/modestore"
	"mediafetch/internal/notify"
	"mediafetch/internal/pipeline"
	"mediafetch/internal/server"
	"mediafetch/internal/ui"
	"mediafetch/internal/util"
	"mediafetch/internal/util/deps"
)

func newFetchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fetch [urls...]",
		Short:         "Download one or more links",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, args, false)
		},
	}
	bindFetchFlags(cmd.Flags())
	return cmd
}

func bindFetchFlags(fs *pflag.FlagSet) {
	fs.StringP("mode", "m", "", "Download mode: audio or video (default: the saved mode for --user)")
	fs.String("user", "local", "User id for the saved mode and file naming")
	fs.String("chat", "cli", "Conversation id used in file naming")
	fs.String("deliver-dir", "", "Directory small downloads are handed over to (default: data dir)")
	fs.Bool("no-deliver", false, "Keep every download in the download dir and print links")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
	fs.BoolP("quiet", "q", false, "Plain output only: print the first and last message of each job")
}

func (a *app) runFetch(cmd *cobra.Command, args []string, forceTUI bool) error {
	ctx := cmd.Context()
	fs := cmd.Flags()

	for _, raw := range args {
		if _, err := util.ValidateURL(raw); err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
	}
	var mode model.Mode
	if raw, _ := fs.GetString("mode"); raw != "" {
		m, err := model.ParseMode(raw)
		if err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		mode = m
	}

	dl, err := deps.FindDownloader(a.cfg.YtDlpPath)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	if err := util.EnsureDir(a.cfg.DownloadDir); err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create download dir: %w", err)}
	}
	store, err := a.openModes(ctx)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	deliverer, err := deliverer(fs)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	user, _ := fs.GetString("user")
	chat, _ := fs.GetString("chat")
	jobOpts := a.jobOptions(dl, deliverer)
	run := func(ctx context.Context, n notify.Notifier) error {
		jobOpts.Notifier = n
		svc := pipeline.NewService(
			pipeline.WithJobOptions(jobOpts),
			pipeline.WithModeStore(store),
			pipeline.WithMode(mode),
			pipeline.WithIdentity(user, chat),
		)
		return pipeline.Err(svc.RunAll(ctx, args))
	}

	noUI, _ := fs.GetBool("no-ui")
	if forceTUI || (!noUI && isTerminal()) {
		err = a.runTUI(ctx, cmd, run)
	} else {
		w := notify.NewWriter(cmd.OutOrStdout())
		w.Quiet, _ = fs.GetBool("quiet")
		err = run(ctx, w)
	}
	if errors.Is(err, ui.ErrInterrupted) {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if err != nil {
		return &ExitError{Code: ExitDownloadError, Err: err}
	}
	return nil
}

// runTUI sends logs to a file while the terminal UI owns the screen.
func (a *app) runTUI(ctx context.Context, cmd *cobra.Command, run func(context.Context, notify.Notifier) error) error {
	log := slog.New(slog.DiscardHandler)
	if dir, err := dirs.StateDir(); err == nil && dirs.Ensure(dir) == nil {
		f, err := os.OpenFile(filepath.Join(dir, "mediafetch.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close()
			if l, lerr := logging.New(f, a.cfg.LogLevel, "json"); lerr == nil {
				log = l
			}
		}
	}
	return ui.Run(logging.Context(ctx, log), "mediafetch", cmd.OutOrStdout(), run)
}

func (a *app) jobOptions(downloaderPath string, d notify.Deliverer) downloader.Options {
	return downloader.Options{
		DownloaderPath: downloaderPath,
		DownloadDir:    a.cfg.DownloadDir,
		ExtraArgs:      a.cfg.ExtraArgs,
		InlineMaxBytes: a.cfg.InlineMaxBytes,
		Timeout:        a.cfg.JobTimeout,
		Deliverer:      d,
		Links:          server.Linker{Base: a.cfg.PublicBaseURL}.Links,
	}
}

func (a *app) openModes(ctx context.Context) (*modestore.Store, error) {
	return modestore.Open(ctx, modestore.FilePersister{Path: a.cfg.ModesFile})
}

// deliverer returns nil when delivery is disabled; jobs then report links.
func deliverer(fs *pflag.FlagSet) (notify.Deliverer, error) {
	if off, _ := fs.GetBool("no-deliver"); off {
		return nil, nil
	}
	dir, _ := fs.GetString("deliver-dir")
	if dir == "" {
		d, err := dirs.DefaultDeliverDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return notify.DirDeliverer{Dir: dir}, nil
}
