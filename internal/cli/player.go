package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List connected players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerList
			if err := client.Get("/api/v1/players", &result); err != nil {
				return err
			}

			out := NewOutputTo(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(newPlayerGetCmd())

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get("/api/v1/players/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutputTo(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
