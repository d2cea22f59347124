package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output   string
	formats  []string
	detailed bool
	layout   layoutFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a graph or layout file as SVG, PNG, JPG or DOT",
		Long: `Render a graph or layout file.

A layout record (from 'layout') is drawn as stored. A plain graph is laid out
first, using the same options and cache as 'layout'.

Formats: svg (default), png, jpg, dot (Graphviz source), json (layout record).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, jpg, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their metadata")
	opts.layout.register(cmd)
	return cmd
}

// runRender renders input in every requested format and writes one file per
// format.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	popts := cfg.PipelineOptions()
	if err := opts.layout.apply(&popts); err != nil {
		return err
	}
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed

	runner, err := c.newRunner(ctx, cfg, opts.layout.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()
	artifacts, err := renderInput(ctx, runner, input, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered %s", input)
	base := outputBase(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if filepath.Clean(path) == filepath.Clean(input) {
			return fmt.Errorf("output %s would overwrite the input", path)
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote output", "format", format, "path", path, "bytes", len(artifacts[format]))
		printFile(path)
	}
	return nil
}

// renderInput draws a layout record as stored, or lays out a plain graph
// and draws the result.
func renderInput(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (map[string][]byte, error) {
	if l, err := graph.ReadLayoutFile(input); err == nil {
		g, err := graph.ToCompound(l.Graph)
		if err != nil {
			return nil, fmt.Errorf("load layout %s: %w", input, err)
		}
		return runner.Render(ctx, g, l, opts)
	}

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", input, err)
	}
	res, err := runner.Execute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	return res.Artifacts, nil
}

// isFormat reports whether ext names an output format.
func isFormat(ext string) bool {
	return pipeline.ValidateFormat(ext) == nil
}
