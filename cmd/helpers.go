package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/uia-provider/internal/ipc"
	"github.com/mj1618/uia-provider/internal/logging"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

// dialTimeout bounds connecting to the server, not the calls made after.
const dialTimeout = 5 * time.Second

// dialServer connects to the configured server.
func dialServer(cmd *cobra.Command) (*ipc.Client, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), dialTimeout)
	defer cancel()
	c, err := ipc.Dial(ctx, cfg.Server.Addr, ipc.ClientOptions{
		Token:   cfg.Server.Token,
		Timeout: cfg.Server.CallTimeout.Duration,
		Logger:  logging.For("client"),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to uia-provider server (is `uia-provider serve` running?): %w", err)
	}
	return c, nil
}

// printAction prints res and turns a rejected action into a command error.
func printAction(res output.ActionResult) error {
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("%s was not accepted", res.Action)
	}
	return nil
}

// getPoint reads the --x/--y flag pair.
func getPoint(cmd *cobra.Command) (int, int) {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	return x, y
}

// addPointFlags registers required --x/--y flags.
func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().Int("x", 0, "X screen coordinate")
	cmd.Flags().Int("y", 0, "Y screen coordinate")
	cmd.MarkFlagRequired("x")
	cmd.MarkFlagRequired("y")
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
