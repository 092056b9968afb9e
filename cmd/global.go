package cmd

import (
	"strings"

	"github.com/mj1618/uia-provider/internal/output"
	"github.com/mj1618/uia-provider/internal/platform"
	"github.com/spf13/cobra"
)

var globalCmd = &cobra.Command{
	Use:   "global <action>",
	Short: "Perform a global action such as back or home",
	Long: "Perform a global action. Accepts a name (" + strings.Join(platform.GlobalActionNames(), ", ") +
		") or a numeric code, which is passed through unchecked.",
	Args: cobra.ExactArgs(1),
	RunE: runGlobal,
}

func init() {
	rootCmd.AddCommand(globalCmd)
}

func runGlobal(cmd *cobra.Command, args []string) error {
	id, err := platform.ParseGlobalAction(args[0])
	if err != nil {
		return err
	}
	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()
	return printAction(output.ActionResult{OK: client.PerformGlobalAction(id), Action: "global", Target: args[0]})
}
