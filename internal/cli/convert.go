package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inklet/inklet/pkg/codec"
)

// convertCommand creates the convert command for rewriting a document
// between compressed and plain page payloads.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output     string
		compress   bool
		decompress bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Rewrite a document's page payload encoding",
		Long: `Convert reads a document in either payload encoding and writes it back
with compressed (deflate+base64) or plain XML page payloads. Without
--compress or --decompress the configured default encoding is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compress && decompress {
				return fmt.Errorf("--compress and --decompress are mutually exclusive")
			}

			logger := loggerFromContext(cmd.Context())
			d, err := codec.ImportFile(args[0])
			if err != nil {
				return err
			}
			logger.Debugf("Loaded %s: %d pages", args[0], d.PageCount())

			opts := codec.WriteOptions{Compress: c.Config.Compress}
			if compress {
				opts.Compress = true
			}
			if decompress {
				opts.Compress = false
			}

			out := output
			if out == "" {
				out = derivedPath(args[0], opts.Compress)
			}
			if err := codec.ExportFile(d, out, opts); err != nil {
				return err
			}

			encoding := "plain"
			if opts.Compress {
				encoding = "compressed"
			}
			printSuccess("Converted %s (%s payloads)", filepath.Base(args[0]), encoding)
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default derived from input)")
	cmd.Flags().BoolVar(&compress, "compress", false, "write compressed page payloads")
	cmd.Flags().BoolVar(&decompress, "decompress", false, "write plain XML page payloads")

	return cmd
}

// derivedPath builds an output file name next to the input, tagged with
// the target encoding so the source is never overwritten silently.
func derivedPath(input string, compressed bool) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	tag := "_plain"
	if compressed {
		tag = "_compressed"
	}
	if ext == "" {
		ext = ".drawio"
	}
	return base + tag + ext
}
