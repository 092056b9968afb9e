package cmd

import (
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

var tapCmd = &cobra.Command{
	Use:     "tap",
	Aliases: []string{"click"},
	Short:   "Tap at screen coordinates",
	RunE:    runTap,
}

var longPressCmd = &cobra.Command{
	Use:   "long-press",
	Short: "Long-press at screen coordinates",
	RunE:  runLongPress,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	addPointFlags(tapCmd)

	rootCmd.AddCommand(longPressCmd)
	addPointFlags(longPressCmd)
}

func runTap(cmd *cobra.Command, args []string) error {
	x, y := getPoint(cmd)
	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()
	return printAction(output.ActionResult{OK: client.PerformClick(x, y), Action: "tap", X: x, Y: y})
}

func runLongPress(cmd *cobra.Command, args []string) error {
	x, y := getPoint(cmd)
	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()
	return printAction(output.ActionResult{OK: client.PerformLongPress(x, y), Action: "long-press", X: x, Y: y})
}
