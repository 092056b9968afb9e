package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/uia-provider/internal/config"
	"github.com/mj1618/uia-provider/internal/logging"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/mj1618/uia-provider/internal/version"
	"github.com/spf13/cobra"
)

// cfg is the effective configuration, loaded before any command runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "uia-provider",
	Short: "Remote UI automation backend",
	Long: `uia-provider captures the active window's UI tree, synthesizes taps and
swipes, and takes screenshots on behalf of out-of-process callers.

Run "uia-provider serve" on the machine that owns the display. The other
commands connect to a running server and call it.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file, .yaml or .toml (default: user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("addr", "", "Server address host:port (overrides server.addr)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides server.token)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		if path == "" {
			if p, err := config.DefaultPath(); err == nil {
				path = p
			}
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
			cfg.Log.Level = v
		}
		if v, _ := rootCmd.PersistentFlags().GetString("addr"); v != "" {
			cfg.Server.Addr = v
		}
		if v, _ := rootCmd.PersistentFlags().GetString("token"); v != "" {
			cfg.Server.Token = v
		}
		if err := logging.Init(logging.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON}); err != nil {
			return err
		}

		// Use the root persistent flag directly to avoid conflicts with
		// subcommand local flags (e.g. screenshot --format png/jpg).
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}
