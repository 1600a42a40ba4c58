package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inklet/inklet/pkg/codec"
)

// validateCommand creates the validate command for checking document
// integrity. Structural errors (malformed XML, duplicate identifiers,
// unresolved parents) always fail; dangling connector endpoints are
// reported as warnings unless --strict is set.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			d, err := codec.ReadWith(f, codec.ReadOptions{StrictReferences: strict})
			if err != nil {
				printError("%s: %v", args[0], err)
				return fmt.Errorf("validation failed")
			}

			dangling := 0
			for _, p := range d.Pages() {
				for _, el := range p.Dangling() {
					if el.Connector.SourceDangling {
						dangling++
						printWarning("page %q: connector %s has dangling source %q", p.Name(), el.ID, el.Connector.Source)
					}
					if el.Connector.TargetDangling {
						dangling++
						printWarning("page %q: connector %s has dangling target %q", p.Name(), el.ID, el.Connector.Target)
					}
				}
			}

			if dangling > 0 {
				printInfo("%d dangling reference(s); they are preserved on write", dangling)
			}
			printSuccess("%s: %d page(s) valid", args[0], d.PageCount())
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on dangling connector references")

	return cmd
}
