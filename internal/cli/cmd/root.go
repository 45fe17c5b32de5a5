package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"mediafetch/internal/config"
	"mediafetch/internal/logging"
)

const (
	ExitOK            = 0
	ExitCLIError      = 1
	ExitMissingDep    = 2
	ExitDownloadError = 3
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// app carries the resolved configuration to every command.
type app struct {
	v   *viper.Viper
	cfg config.Config
	log *slog.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}
	root := &cobra.Command{
		Use:   "mediafetch [urls...]",
		Short: "Download media with yt-dlp and hand over the result",
		Long: "mediafetch downloads videos and audio with yt-dlp, reports progress while it runs, " +
			"then hands small files over directly and keeps large ones in a shared download " +
			"directory served over HTTP and cleaned up after a while.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.MinimumNArgs(1),
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFetch(cmd, args, false)
		},
	}

	// Persistent flags available to all subcommands, bound to config keys.
	pf := root.PersistentFlags()
	pf.StringP("download-dir", "d", "", "Shared download directory (default ./downloads)")
	pf.String("ytdlp-path", "", "Path to yt-dlp (default yt-dlp in PATH)")
	pf.String("modes-file", "", "File storing per-user modes, .json or .yaml")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: auto, text, json")

	// Also bind fetch flags on root, so `mediafetch <url>` works.
	bindFetchFlags(root.Flags())

	root.AddCommand(
		newFetchCmd(a),
		newTuiCmd(a),
		newModeCmd(a),
		newSweepCmd(a),
		newStatsCmd(a),
		newServeCmd(a),
		newDoctorCmd(a),
		newCompletionCmd(),
	)
	return root
}

// setup loads configuration and installs the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.Init(a.v, cmd.Root()); err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	log, err := logging.SetupDefault(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	a.cfg = cfg
	a.log = log
	cmd.SetContext(logging.Context(cmd.Context(), log))
	return nil
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd(viper.New())
	return root.ExecuteContext(ctx)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
