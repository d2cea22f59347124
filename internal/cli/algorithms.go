package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/layout/builtin"
)

// algorithmsCommand lists the registered layout algorithms and where the
// configuration uses them.
func (c *CLI) algorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "algorithms",
		Aliases: []string{"algos"},
		Short:   "List available layout algorithms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			uses := make(map[string][]string)
			uses[cfg.Layout.Default.Name] = append(uses[cfg.Layout.Default.Name], "default")
			for t, lc := range cfg.Layout.Boxes {
				uses[lc.Name] = append(uses[lc.Name], t+" boxes")
			}

			out := cmd.OutOrStdout()
			for _, name := range builtin.Registry().Names() {
				u := uses[name]
				slices.Sort(u)
				fmt.Fprintln(out, keyValue(name, styleHighlight.Render(strings.Join(u, ", "))))
			}
			return nil
		},
	}
}
