package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kintreeapp/kintree/pkg/layout"
	"github.com/kintreeapp/kintree/pkg/pipeline"
	"github.com/kintreeapp/kintree/pkg/render"
)

// newRenderCmd creates the render command for turning a previously computed
// layout into DOT, SVG, or PNG artifacts without recomputing geometry.
func newRenderCmd() *cobra.Command {
	var (
		output   string
		formats  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a computed layout to DOT, SVG, or PNG",
		Long: `Render a computed layout to DOT, SVG, or PNG.

The render command takes a layout.json file (produced by 'kintree layout')
and generates preview artifacts from the stored geometry. Positions are
pinned, so the preview matches exactly what the layout computed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := parseFormats(formats)
			if fs[0] == pipeline.FormatJSON && formats == "" {
				fs = []string{pipeline.FormatSVG}
			}
			for _, f := range fs {
				if f == pipeline.FormatJSON {
					return fmt.Errorf("invalid render format: json is the input, not an output")
				}
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			return runRender(cmd.Context(), args[0], output, fs, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include coordinates in DOT labels")

	return cmd
}

// runRender loads the layout and writes one artifact per format.
func runRender(ctx context.Context, input, output string, formats []string, detailed bool) error {
	logger := loggerFromContext(ctx)

	res, err := layout.ReadResultFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	logger.Infof("Loaded layout: %d nodes, %d connections", len(res.Nodes), len(res.Connections))

	dot := render.ToDOT(res, render.Options{Detailed: detailed})
	base := basePath(output, strings.TrimSuffix(input, ".layout.json"))

	for _, format := range formats {
		var data []byte
		switch format {
		case pipeline.FormatDOT:
			data = []byte(dot)
		case pipeline.FormatSVG:
			data, err = render.RenderSVG(ctx, dot)
		case pipeline.FormatPNG:
			data, err = render.RenderPNG(ctx, dot)
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}

		path := outputPath(base, format, len(formats) == 1, output)
		if err := writeArtifact(path, data); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Render complete")
	return nil
}
