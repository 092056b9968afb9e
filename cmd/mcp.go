package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/uia-provider/internal/logging"
	"github.com/mj1618/uia-provider/internal/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Bridge a running server to MCP over stdio",
	Long: `Connect to a running "uia-provider serve" and expose its calls as MCP
tools on stdin/stdout, for MCP clients that launch a local process.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("cache-ttl", 500, "Hierarchy cache TTL in milliseconds (0 to disable)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")

	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-client.Done():
			log := logging.For("mcp")
			log.Warn().Msg("server connection closed")
			stop()
		case <-ctx.Done():
		}
	}()

	srv := server.New(client, server.Options{
		CacheTTL: msDuration(cacheTTLMs),
		Logger:   logging.For("mcp"),
	})
	return srv.Serve(ctx, server.TransportStdio, "")
}
