package cmd

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/mj1618/uia-provider/internal/api"
	"github.com/mj1618/uia-provider/internal/model"
	"github.com/mj1618/uia-provider/internal/output"
	"github.com/mj1618/uia-provider/internal/screenshot"
	"github.com/spf13/cobra"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the default display to a file",
	Long: `Capture the default display to a file on the server's machine.

Captures are spaced at least screenshot.min_interval apart; a request made
sooner waits. With --annotate, clickable and labelled nodes from the current
hierarchy are boxed and tagged with their center coordinates or flat index.`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("output", "screenshot.png", "Output file path")
	screenshotCmd.Flags().String("format", "", "Image format: png, jpg (default: from --output extension)")
	screenshotCmd.Flags().String("annotate", "", "Overlay node boxes labelled by: coords, index")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	annotate, _ := cmd.Flags().GetString("annotate")

	if format == "" {
		format = filepath.Ext(path)
		if len(format) > 0 {
			format = format[1:]
		}
	}
	var mode screenshot.LabelMode
	switch annotate {
	case "":
	case "coords":
		mode = screenshot.LabelCoords
	case "index":
		mode = screenshot.LabelIndex
	default:
		return fmt.Errorf("unsupported annotate mode: %s (use coords or index)", annotate)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	client, err := dialServer(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	res := output.ActionResult{Action: "screenshot", Path: abs}
	res.OK = client.TakeScreenshot(abs, format)
	if res.OK && annotate != "" {
		if err := annotateFile(client, abs, screenshot.ParseFormat(format), mode); err != nil {
			return err
		}
	}
	return printAction(res)
}

// annotateFile redraws the screenshot at path with the current hierarchy.
func annotateFile(p api.Provider, path string, format screenshot.Format, mode screenshot.LabelMode) error {
	doc := p.GetUIHierarchy()
	if doc == "" {
		return fmt.Errorf("annotate: no UI hierarchy available")
	}
	root, err := model.ParseHierarchy(doc)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	screen, err := model.ParseRect(root.Bounds)
	if err != nil {
		return fmt.Errorf("annotate: root bounds: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("annotate: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("annotate: decode %s: %w", path, err)
	}

	var nodes []model.FlatNode
	for _, n := range model.FlattenHierarchy(root) {
		if n.Clickable || n.Text != "" || n.ContentDesc != "" {
			nodes = append(nodes, n)
		}
	}
	return screenshot.WriteFile(path, screenshot.Annotate(img, nodes, screen, mode), format, cfg.Screenshot.JPEGQuality)
}
