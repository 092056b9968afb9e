package cmd

import (
	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

var setTextCmd = &cobra.Command{
	Use:     "set-text",
	Aliases: []string{"set-value"},
	Short:   "Set text on an editable node",
	Long: `Set text on the first editable node at or under the node whose bounds
equal --id, e.g. --id "[0,100][720,200]". Use "hierarchy" or "focused" to
find IDs.`,
	RunE: runSetText,
}

func init() {
	rootCmd.AddCommand(setTextCmd)
	setTextCmd.Flags().String("id", "", "Bounds ID of the target node")
	setTextCmd.Flags().String("text", "", "Text to set")
	setTextCmd.MarkFlagRequired("id")
	setTextCmd.MarkFlagRequired("text")
}

func runSetText(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	text, _ := cmd.Flags().GetString("text")
	if _, err := model.ParseRect(id); err != nil {
		return err
	}

	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()
	return printAction(output.ActionResult{OK: client.SetTextOnNode(id, text), Action: "set-text", Target: id})
}
