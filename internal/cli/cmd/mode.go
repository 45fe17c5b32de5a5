package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"mediafetch/internal/model"
)

func newModeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mode [audio|video]",
		Short:         "Show or set the saved download mode of a user",
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgs:     []string{string(model.ModeAudio), string(model.ModeVideo)},
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := a.openModes(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}

			if all, _ := cmd.Flags().GetBool("all"); all {
				modes := store.All()
				users := make([]string, 0, len(modes))
				for u := range modes {
					users = append(users, u)
				}
				slices.Sort(users)
				for _, u := range users {
					fmt.Fprintf(out, "%s: %s\n", u, modes[u])
				}
				return nil
			}

			user, _ := cmd.Flags().GetString("user")
			if len(args) == 0 {
				fmt.Fprintf(out, "Mode for user %s: %s\n", user, store.Get(user))
				return nil
			}
			m, err := model.ParseMode(args[0])
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if err := store.Set(user, m); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(out, "Mode for user %s set to %s\n", user, m)
			return nil
		},
	}
	cmd.Flags().String("user", "local", "User id whose mode to show or set")
	cmd.Flags().Bool("all", false, "List every saved mode")
	return cmd
}
