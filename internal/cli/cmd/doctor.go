package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediafetch/internal/util/deps"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose external dependencies (yt-dlp, ffmpeg)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			dl, err := deps.FindDownloader(a.cfg.YtDlpPath)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			version, err := deps.Probe(ctx, dl, "--version")
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: fmt.Errorf("%s --version: %w", dl, err)}
			}
			fmt.Fprintf(out, "yt-dlp:  %s (%s)\n", dl, version)

			ff, err := deps.FindFFmpeg()
			if err == nil {
				if v, perr := deps.Probe(ctx, ff, "-version"); perr == nil {
					fmt.Fprintf(out, "ffmpeg:  %s (%s)\n", ff, v)
				} else {
					err = perr
				}
			}
			if err != nil {
				a.log.Warn("ffmpeg unavailable", "error", err)
				fmt.Fprintf(out, "ffmpeg:  missing, merging video and audio may fail\n")
			}

			fmt.Fprintf(out, "Downloads: %s\n", a.cfg.DownloadDir)
			fmt.Fprintf(out, "Modes:     %s\n", a.cfg.ModesFile)
			fmt.Fprintf(out, "Links:     %s\n", a.cfg.PublicBaseURL)
			return nil
		},
	}
}
