package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kintreeapp/kintree/pkg/config"
	"github.com/kintreeapp/kintree/pkg/person"
	"github.com/kintreeapp/kintree/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output   string // output file path (or base path for multiple formats)
	formats  string // comma-separated output formats
	noCache  bool   // disable memoization
	refresh  bool   // bypass the cache for this run
	detailed bool   // include coordinates in DOT labels
	pipeline pipeline.Options
}

// newLayoutCmd creates the layout command for computing family-tree layouts.
// It reads a person collection, runs the full pipeline, and writes one file
// per requested format.
func newLayoutCmd(configPath *string) *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [persons.json]",
		Short: "Compute a family-tree layout from a person collection",
		Long: `Compute a family-tree layout from a person collection.

The layout command takes a persons.json file (an object with a "persons"
array of records) and computes node coordinates and parent-child connectors.
The JSON output contains nodes, connections, diagnostics, and bounds; DOT,
SVG, and PNG artifacts are rendered from the same layout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.pipeline.Formats = parseFormats(opts.formats)
			opts.pipeline.Detailed = opts.detailed
			opts.pipeline.Refresh = opts.refresh
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			applyLayoutDefaults(&opts.pipeline, cfg.Layout)
			return runLayout(cmd.Context(), args[0], &opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): json (default), dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include coordinates in DOT labels")
	cmd.Flags().Float64Var(&opts.pipeline.ViewportWidth, "viewport-width", 0, "viewport width in pixels (default 1080)")
	cmd.Flags().Float64Var(&opts.pipeline.SiblingSpacing, "sibling-spacing", 0, "minimum spacing between sibling centers")
	cmd.Flags().Float64Var(&opts.pipeline.BreadthUnit, "breadth-unit", 0, "pixels per breadth unit")
	cmd.Flags().Float64Var(&opts.pipeline.Widen, "widen", 0, "generation spacing widen factor (default 1.15)")
	cmd.Flags().BoolVar(&opts.pipeline.RTL, "rtl", false, "mirror the layout for right-to-left display")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["json"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

// applyLayoutDefaults fills zero-valued layout options from configuration.
// Engine defaults apply to anything still zero after this.
func applyLayoutDefaults(opts *pipeline.Options, cfg config.LayoutConfig) {
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = cfg.ViewportWidth
	}
	if opts.SiblingSpacing == 0 {
		opts.SiblingSpacing = cfg.SiblingSpacing
	}
	if opts.BreadthUnit == 0 {
		opts.BreadthUnit = cfg.BreadthUnit
	}
	if opts.Widen == 0 {
		opts.Widen = cfg.Widen
	}
	if !opts.RTL {
		opts.RTL = cfg.RTL
	}
}

// runLayout loads the collection, runs the pipeline, and writes artifacts.
func runLayout(ctx context.Context, input string, opts *layoutOpts, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	col, err := person.ReadCollectionFile(input)
	if err != nil {
		return fmt.Errorf("load collection %s: %w", input, err)
	}
	logger.Infof("Loaded %d person records", len(col.Persons))

	runner, err := newRunner(ctx, cfg, logger, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	opts.pipeline.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, col.Persons, opts.pipeline)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d persons", len(result.Layout.Nodes)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(opts.output, input)
	for _, format := range opts.pipeline.Formats {
		path := outputPath(base, format, len(opts.pipeline.Formats) == 1, opts.output)
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	printSuccess("Layout complete")
	printStats(len(result.Layout.Nodes), len(result.Layout.Connections), len(result.Layout.Diagnostics), result.CacheInfo.LayoutHit)
	for _, d := range result.Layout.Diagnostics {
		printWarning("%s: %s (%s)", d.Code, d.Detail, d.PersonID)
	}
	printNewline()
	printNextStep("Browse", "kintree tree "+input)

	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output carries
// a format extension it is stripped, so multi-format runs can share a base.
func basePath(output, input string) string {
	if output == "" || output == "-" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath builds the file path for one artifact. A single requested
// format honors an explicit --output verbatim.
func outputPath(base, format string, single bool, explicit string) string {
	if single && explicit != "" {
		return explicit
	}
	if format == pipeline.FormatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}

// writeArtifact writes one rendered artifact to disk (or stdout for "-").
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
