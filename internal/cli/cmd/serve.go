package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"mediafetch/internal/server"
	"mediafetch/internal/util"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the download directory over HTTP and sweep it periodically",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := util.EnsureDir(a.cfg.DownloadDir); err != nil {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("failed to create download dir: %w", err)}
			}

			sw := a.sweeper()
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				sw.Run(ctx)
			}()

			a.log.Info("serving downloads", "dir", a.cfg.DownloadDir, "public_url", a.cfg.PublicBaseURL,
				"sweep_every", a.cfg.CleanupInterval, "max_age", a.cfg.FileMaxAge)
			srv := server.New(fmt.Sprintf(":%d", a.cfg.ServerPort), a.cfg.DownloadDir, a.log)
			err := srv.Run(ctx)
			wg.Wait()
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
	}
	cmd.Flags().IntP("port", "p", 0, "HTTP port (default 3000)")
	_ = a.v.BindPFlag("server_port", cmd.Flags().Lookup("port"))
	return cmd
}
