package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mediafetch/internal/sweeper"
	"mediafetch/internal/util/format"
)

func (a *app) sweeper() *sweeper.Sweeper {
	return sweeper.New(a.cfg.DownloadDir, a.cfg.FileMaxAge, a.cfg.CleanupInterval, a.cfg.SweepInitialDelay)
}

func newSweepCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sweep",
		Short:         "Delete downloads older than the configured max age",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := a.sweeper().Sweep(cmd.Context())
			return render(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s, freed %s", plural(res.Deleted, "file"), humanize.IBytes(uint64(res.BytesFreed)))
				if res.Errors > 0 {
					fmt.Fprintf(w, " (%s)", plural(res.Errors, "error"))
				}
				fmt.Fprintln(w)
			})
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show download directory usage",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.sweeper().Stats(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return render(cmd, st, func(w io.Writer) {
				fmt.Fprintf(w, "Directory:  %s\n", a.cfg.DownloadDir)
				fmt.Fprintf(w, "Entries:    %d\n", st.Count)
				fmt.Fprintf(w, "Total size: %s\n", humanize.IBytes(uint64(st.TotalBytes)))
				fmt.Fprintf(w, "Older than %s: %d\n", format.Age(a.cfg.FileMaxAge), st.Aged)
			})
		},
	}
	addFormatFlag(cmd)
	return cmd
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "Output format: text or yaml")
}

func render(cmd *cobra.Command, v any, text func(io.Writer)) error {
	out := cmd.OutOrStdout()
	switch f, _ := cmd.Flags().GetString("format"); f {
	case "text":
		text(out)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		if err := enc.Encode(v); err != nil {
			return &ExitError{Code: ExitCLIError, Err: err}
		}
		return nil
	default:
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("invalid --format: %q (valid: text|yaml)", f)}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
