package cli

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/inklet/inklet/pkg/codec"
	"github.com/inklet/inklet/pkg/model"
)

// inspectCommand creates the inspect command for summarizing a document.
func (c *CLI) inspectCommand() *cobra.Command {
	var showMeta bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarize a document's pages and elements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			logger.Debugf("Reading %s", args[0])

			d, err := codec.ImportFile(args[0])
			if err != nil {
				return err
			}

			printKeyValue("Document", d.Name())
			if d.Version() != "" {
				printKeyValue("Version", d.Version())
			}
			printKeyValue("Pages", fmt.Sprintf("%d", d.PageCount()))
			fmt.Println(pageTable(d))

			if showMeta {
				printMeta(d)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMeta, "meta", false, "show document metadata")

	return cmd
}

// pageTable renders a per-page element breakdown.
func pageTable(d *model.Diagram) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("PAGE", "SHAPES", "CONNECTORS", "GROUPS", "DANGLING")

	for _, p := range d.Pages() {
		var shapes, connectors, groups int
		for _, el := range p.Elements() {
			switch el.Kind {
			case model.KindShape:
				shapes++
			case model.KindConnector:
				connectors++
			case model.KindGroup:
				groups++
			}
		}
		t.Row(p.Name(),
			fmt.Sprintf("%d", shapes),
			fmt.Sprintf("%d", connectors),
			fmt.Sprintf("%d", groups),
			fmt.Sprintf("%d", len(p.Dangling())))
	}
	return t.Render()
}

// printMeta prints document metadata entries in key order.
func printMeta(d *model.Diagram) {
	meta := d.MetaMap()
	if len(meta) == 0 {
		printDetail("no metadata")
		return
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printDetail("%s = %s", k, meta[k])
	}
}
