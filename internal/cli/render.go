package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inklet/inklet/pkg/codec"
	"github.com/inklet/inklet/pkg/model"
	"github.com/inklet/inklet/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	formats  []string // output formats: "dot", "svg", "png"
	page     string   // page name or zero-based index; empty means all pages
	detailed bool     // include element identifiers in node labels
}

// renderCommand creates the render command for generating page views.
// It supports DOT, SVG, and PNG output; SVG and PNG go through Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render document pages to DOT, SVG, or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single page/format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.page, "page", "p", "", "page name or index (default: all pages)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include element identifiers in labels")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{"dot": true, "svg": true, "png": true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input. If output carries a
// format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// runRender loads the document and renders the selected pages to the
// requested formats.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	d, err := codec.ImportFile(input)
	if err != nil {
		return err
	}

	pages, err := selectPages(d, opts.page)
	if err != nil {
		return err
	}
	logger.Debugf("Selected %d of %d pages", len(pages), d.PageCount())

	prog := newProgress(logger)
	files := 0
	for _, p := range pages {
		for _, format := range opts.formats {
			path, err := renderPage(ctx, p, format, input, opts, len(pages) > 1)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", p.Name(), format, err)
			}
			printFile(path)
			files++
		}
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", files))
	return nil
}

// selectPages resolves the --page flag against the document. The flag is
// matched as a page name first, then as a zero-based index.
func selectPages(d *model.Diagram, sel string) ([]*model.Page, error) {
	if sel == "" {
		return d.Pages(), nil
	}
	if p := d.PageByName(sel); p != nil {
		return []*model.Page{p}, nil
	}
	if i, err := strconv.Atoi(sel); err == nil {
		if p := d.PageAt(i); p != nil {
			return []*model.Page{p}, nil
		}
	}
	return nil, fmt.Errorf("no such page: %s", sel)
}

// renderPage renders one page in one format and writes the result. The
// output name carries the page name when multiple pages are rendered.
func renderPage(ctx context.Context, p *model.Page, format, input string, opts *renderOpts, multi bool) (string, error) {
	dot := render.ToDOT(p, render.Options{Detailed: opts.detailed})

	var (
		data []byte
		err  error
	)
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg", "png":
		spin := newSpinner(ctx, fmt.Sprintf("rendering %s %s", p.Name(), format))
		spin.Start()
		if format == "svg" {
			data, err = render.SVG(dot)
		} else {
			data, err = render.PNG(dot)
		}
		spin.Stop()
		if spin.Cancelled() {
			return "", ctx.Err()
		}
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}

	base := basePath(opts.output, input)
	path := fmt.Sprintf("%s.%s", base, format)
	if multi {
		path = fmt.Sprintf("%s_%s.%s", base, safeName(p.Name()), format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// safeName makes a page name usable as a file name fragment.
func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ':
			return '_'
		}
		return r
	}, name)
}
