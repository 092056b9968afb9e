package cmd

import (
	"fmt"

	"github.com/mj1618/uia-provider/internal/output"
	"github.com/mj1618/uia-provider/internal/server"
	"github.com/spf13/cobra"
)

var swipeCmd = &cobra.Command{
	Use:     "swipe",
	Aliases: []string{"drag"},
	Short:   "Swipe from one point to another",
	Long: `Swipe in a straight line from (--x1, --y1) to (--x2, --y2) over --duration
milliseconds. The result reports whether the gesture was accepted, not
whether it finished.`,
	RunE: runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().Int("x1", 0, "Start X")
	swipeCmd.Flags().Int("y1", 0, "Start Y")
	swipeCmd.Flags().Int("x2", 0, "End X")
	swipeCmd.Flags().Int("y2", 0, "End Y")
	swipeCmd.Flags().Int64("duration", server.DefaultSwipeDuration, "Duration in milliseconds")
	for _, name := range []string{"x1", "y1", "x2", "y2"} {
		swipeCmd.MarkFlagRequired(name)
	}
}

func runSwipe(cmd *cobra.Command, args []string) error {
	x1, _ := cmd.Flags().GetInt("x1")
	y1, _ := cmd.Flags().GetInt("y1")
	x2, _ := cmd.Flags().GetInt("x2")
	y2, _ := cmd.Flags().GetInt("y2")
	duration, _ := cmd.Flags().GetInt64("duration")

	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	return printAction(output.ActionResult{
		OK:     client.PerformSwipe(x1, y1, x2, y2, duration),
		Action: "swipe",
		X:      x1,
		Y:      y1,
		Target: fmt.Sprintf("%d,%d", x2, y2),
	})
}
