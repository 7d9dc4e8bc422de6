package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/sourcemap"
)

func (c *CLI) treeCommand() *cobra.Command {
	var (
		depth   int
		mapFile string
	)

	cmd := &cobra.Command{
		Use:   "tree [project-dir] [script]",
		Short: "Print the require tree of a script",
		Long: `Print the require tree of a script.

The script is named by its dotted instance path (ReplicatedStorage.Shared.Util)
or its source file. Without a script, the tree of every script that no other
script requires is printed. Modules already being expanded higher up a branch
are marked with ↺.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, script := ".", ""
			if len(args) > 0 {
				dir = args[0]
			}
			if len(args) > 1 {
				script = args[1]
			}
			return c.runTree(cmd.Context(), dir, mapFile, script, depth)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum depth, counting the root (0 for no limit)")
	cmd.Flags().StringVar(&mapFile, "sourcemap", sourcemap.DefaultFile, "sourcemap path, relative to the project")
	return cmd
}

func (c *CLI) runTree(ctx context.Context, dir, mapFile, script string, depth int) error {
	m, err := c.scan(ctx, dir, mapFile)
	if err != nil {
		return err
	}

	var roots []*sourcemap.Node
	if script != "" {
		n := m.Lookup(script)
		if n == nil {
			return errors.New(errors.ErrCodeNotFound, "no script %q in %s", script, dir)
		}
		roots = append(roots, n)
	} else {
		roots = topLevel(m)
	}

	for i, n := range roots {
		if i > 0 {
			printNewline()
		}
		fmt.Fprintln(out, m.Tree(n, depth))
	}
	return nil
}

// topLevel returns the scanned scripts nobody requires, in sourcemap order.
func topLevel(m *sourcemap.RequireMap) []*sourcemap.Node {
	required := make(map[*sourcemap.Node]bool)
	for _, deps := range m.Requires {
		for _, d := range deps {
			required[d.Module] = true
		}
	}
	var roots []*sourcemap.Node
	for _, s := range m.Scripts {
		if !required[s] {
			roots = append(roots, s)
		}
	}
	return roots
}
