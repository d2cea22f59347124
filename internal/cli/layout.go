package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/graph"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute the box layout of a graph",
		Long: `Compute the box layout of a graph.

The input is a node-link JSON graph. Boxes are nodes with a "box" type (app,
namespace or cluster); their members name them as "parent". The output is a
layout record holding every node's position, which 'render' can draw.

Algorithms per box type come from boxlayout.toml and can be overridden:

  boxlayout layout graph.json --default layered --box app=grid -p rank_dir=LR

Results are cached by graph and options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)
	return cmd
}

// runLayout loads the graph, lays it out and writes the layout record.
func (c *CLI) runLayout(ctx context.Context, input, output string, flags *layoutFlags) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := cfg.PipelineOptions()
	if err := flags.apply(&opts); err != nil {
		return err
	}

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	logger.Debug("loaded graph", "path", input, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Computing box layout...")
	spinner.Start()

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	prog.done("computed layout", "algorithm", l.Algorithm, "cached", cacheHit)

	if output == "" {
		output = outputBase("", input) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	fmt.Println(statsLine(g.NodeCount(), g.EdgeCount(), countBoxes(g), cacheHit))
	printAnomalies(l)
	printNewline()
	printNextStep("Render", appName+" render "+output)
	return nil
}

// outputBase derives the path output files are named after. With no
// output, the input's extension and any ".layout" suffix are stripped.
func outputBase(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if ext != "" && isFormat(ext) {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

func countBoxes(g *compound.Graph) int {
	n := 0
	for _, node := range g.Nodes() {
		if node.IsBox() {
			n++
		}
	}
	return n
}

func printAnomalies(l graph.Layout) {
	for _, a := range l.Anomalies {
		if a.Node == "" {
			printWarning("box %s: %s", a.Box, a.Reason)
			continue
		}
		printWarning("%s in box %s: %s", a.Node, a.Box, a.Reason)
	}
}
