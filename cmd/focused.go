package cmd

import (
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

var focusedCmd = &cobra.Command{
	Use:   "focused",
	Short: "Print the bounds ID of the focused node",
	Long:  "Print the bounds ID of the node with input focus, falling back to accessibility focus.",
	RunE:  runFocused,
}

func init() {
	rootCmd.AddCommand(focusedCmd)
}

func runFocused(cmd *cobra.Command, args []string) error {
	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	id, found := client.FindFocusedNodeID()
	return output.Print(output.FocusedResult{Found: found, NodeID: id})
}
