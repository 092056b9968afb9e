package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mj1618/uia-provider/internal/ipc"
	"github.com/mj1618/uia-provider/internal/journal"
	"github.com/mj1618/uia-provider/internal/logging"
	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/mj1618/uia-provider/internal/rpc"
	"github.com/mj1618/uia-provider/internal/screenshot"
	"github.com/mj1618/uia-provider/internal/server"
	"github.com/mj1618/uia-provider/internal/service"
	"github.com/mj1618/uia-provider/internal/session"
	"github.com/spf13/cobra"

	// Host backends register themselves with platform.
	_ "github.com/mj1618/uia-provider/internal/platform/sim"
	_ "github.com/mj1618/uia-provider/internal/platform/x11"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the automation backend and its remote call surface",
	Long: `Start the automation backend on a UI host and accept remote calls over
websocket. Optionally expose the same calls as MCP tools.

Backends:
  sim    Simulated screen loaded from a fixture file (reloaded on change)
  x11    The X display named by --display or $DISPLAY

Examples:
  uia-provider serve
  uia-provider serve --backend sim --fixture screen.yaml
  uia-provider serve --backend x11 --mcp streamable-http --mcp-port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("backend", "", "Host backend: sim, x11 (overrides backend.kind)")
	serveCmd.Flags().String("fixture", "", "Fixture file for the sim backend")
	serveCmd.Flags().String("display", "", "X display for the x11 backend")
	serveCmd.Flags().String("mcp", "", "MCP transport: off, stdio, streamable-http (overrides server.mcp)")
	serveCmd.Flags().Int("mcp-port", 0, "HTTP port for the streamable-http MCP transport")
	serveCmd.Flags().String("journal", "", "Call journal database path (overrides journal.path)")
	serveCmd.Flags().Int("cache-ttl", 500, "MCP hierarchy cache TTL in milliseconds (0 to disable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Backend.Kind = v
	}
	if v, _ := cmd.Flags().GetString("fixture"); v != "" {
		cfg.Backend.Fixture = v
	}
	if v, _ := cmd.Flags().GetString("display"); v != "" {
		cfg.Backend.Display = v
	}
	if v, _ := cmd.Flags().GetString("mcp"); v != "" {
		cfg.Server.MCP = v
	}
	if v, _ := cmd.Flags().GetInt("mcp-port"); v != 0 {
		cfg.Server.MCPPort = v
	}
	if v, _ := cmd.Flags().GetString("journal"); v != "" {
		cfg.Journal.Path = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	log := logging.For("serve")

	host, err := platform.NewHost(cfg.Backend.Kind, platform.HostOptions{
		Fixture: cfg.Backend.Fixture,
		Display: cfg.Backend.Display,
		Logger:  logging.For("host"),
	})
	if err != nil {
		return err
	}

	tracker := session.NewTracker()
	svc := service.New(host, tracker, service.Options{
		Screenshot: screenshot.Options{
			MinInterval: cfg.Screenshot.MinInterval.Duration,
			JPEGQuality: cfg.Screenshot.JPEGQuality,
			Scale:       cfg.Screenshot.Scale,
		},
		Logger: logging.For("service"),
	})

	var rec rpc.Recorder
	if cfg.Journal.Path != "" {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if ret := cfg.Journal.Retention.Duration; ret > 0 {
			n, err := store.Prune(time.Now().Add(-ret))
			if err != nil {
				log.Warn().Err(err).Msg("journal prune failed")
			} else if n > 0 {
				log.Info().Int64("removed", n).Msg("pruned journal")
			}
		}
		rec = store
	}
	fwd := rpc.New(tracker, logging.For("rpc"), rec)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 3)
	running := 0
	start := func(name string, fn func(context.Context) error) {
		running++
		go func() {
			err := fn(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				err = fmt.Errorf("%s: %w", name, err)
			} else {
				err = nil
			}
			errCh <- err
		}()
	}

	ipcSrv := ipc.NewServer(fwd, ipc.ServerOptions{
		Token:          cfg.Server.Token,
		CallsPerSecond: cfg.Server.CallsPerSecond,
		Logger:         logging.For("ipc"),
	})
	start("backend", svc.Run)
	start("ipc", func(ctx context.Context) error { return ipcSrv.ListenAndServe(ctx, cfg.Server.Addr) })
	if cfg.Server.MCP != "off" {
		mcpSrv := server.New(fwd, server.Options{
			CacheTTL: msDuration(cacheTTLMs),
			Logger:   logging.For("mcp"),
		})
		addr := fmt.Sprintf(":%d", cfg.Server.MCPPort)
		start("mcp", func(ctx context.Context) error { return mcpSrv.Serve(ctx, cfg.Server.MCP, addr) })
	}

	log.Info().
		Str("backend", cfg.Backend.Kind).
		Str("addr", cfg.Server.Addr).
		Str("mcp", cfg.Server.MCP).
		Str("journal", cfg.Journal.Path).
		Msg("uia-provider serving")

	// The first component to stop takes the others down with it.
	var firstErr error
	for i := 0; i < running; i++ {
		err := <-errCh
		if firstErr == nil {
			firstErr = err
		}
		stop()
	}
	return firstErr
}
