package cmd

import (
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the backend is connected and the foreground activity",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	return output.Print(output.StatusResult{
		Addr:     cfg.Server.Addr,
		Enabled:  client.IsAccessibilityServiceEnabled(),
		Activity: client.GetCurrentActivityName(),
	})
}
