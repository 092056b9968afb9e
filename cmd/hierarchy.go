package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/spf13/cobra"
)

var hierarchyCmd = &cobra.Command{
	Use:     "hierarchy",
	Aliases: []string{"read"},
	Short:   "Capture the active window's UI tree",
	Long: `Capture the active window's UI tree from a running server.

Each node carries class, package, content-desc, text, resource-id, bounds,
clickable and focused. A node's bounds string is its identifier for
set-text.`,
	RunE: runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.Flags().Bool("flat", false, "Output a flat list with path breadcrumbs instead of a tree")
	hierarchyCmd.Flags().Bool("raw", false, "Print the XML document unchanged")
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	flat, _ := cmd.Flags().GetBool("flat")
	raw, _ := cmd.Flags().GetBool("raw")

	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	doc := client.GetUIHierarchy()
	if doc == "" {
		return fmt.Errorf("no UI hierarchy available (backend disconnected or no active window)")
	}
	if raw {
		_, err := fmt.Fprintln(output.Writer, doc)
		return err
	}

	root, err := model.ParseHierarchy(doc)
	if err != nil {
		return err
	}
	activity := client.GetCurrentActivityName()
	if flat {
		return output.Print(output.HierarchyFlatResult{
			Activity: activity,
			TS:       time.Now().Unix(),
			Nodes:    model.FlattenHierarchy(root),
		})
	}
	return output.Print(output.HierarchyResult{
		Activity: activity,
		TS:       time.Now().Unix(),
		Count:    root.Count(),
		Root:     root,
	})
}
