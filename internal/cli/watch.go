package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream broadcast frames from the game server",
		Long: `Connect to the game endpoint without registering and print every frame
the server broadcasts.

Frames include:
  - updatePlayers: full roster after any change
  - hit: one shot that connected

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd)
		},
	}

	return cmd
}

func watch(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := dialGame(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.close() }()

	out := NewOutputTo(cfg.Output, cmd.OutOrStdout())
	if cfg.Output != "json" {
		out.PrintMessage("Connected, waiting for frames")
	}

	frames, errs := conn.readFrames()
	for {
		select {
		case <-ctx.Done():
			if cfg.Output != "json" {
				out.PrintMessage("\nDisconnected")
			}
			return nil
		case frame, ok := <-frames:
			if !ok {
				err := <-errs
				if isNormalClose(err) {
					return nil
				}
				return fmt.Errorf("stream error: %w", err)
			}
			out.PrintFrame(time.Now(), frame)
		}
	}
}

