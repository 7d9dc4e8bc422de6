package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/sourcemap"
)

// maxUnresolvedShown bounds the unresolved requires listed after a scan.
const maxUnresolvedShown = 10

func (c *CLI) scanCommand() *cobra.Command {
	var (
		output  string
		mapFile string
	)

	cmd := &cobra.Command{
		Use:   "scan [project-dir]",
		Short: "Build a require map from a Rojo project",
		Long: `Build a require map from a Rojo project.

The project's sourcemap.json (generate it with 'rojo sourcemap
--include-non-scripts -o sourcemap.json') lists every script and the file it
comes from. Each script is scanned for require calls, which are resolved
against the instance tree. Scripts become nodes grouped by their top-level
service; each resolved require becomes a link from the required module to
the script, weighted by the number of require sites.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runScan(cmd.Context(), dir, mapFile, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", graph.DefaultPath, "output file")
	cmd.Flags().StringVar(&mapFile, "sourcemap", sourcemap.DefaultFile, "sourcemap path, relative to the project")
	return cmd
}

func (c *CLI) scan(ctx context.Context, dir, mapFile string) (*sourcemap.RequireMap, error) {
	spinner := newSpinnerWithContext(ctx, "Scanning "+dir+"...")
	spinner.Start()
	m, err := sourcemap.Scan(ctx, dir, sourcemap.Options{Sourcemap: mapFile, Logger: c.Logger})
	if err != nil {
		spinner.StopWithError("Scan failed")
		return nil, err
	}
	spinner.Stop()
	return m, nil
}

func (c *CLI) runScan(ctx context.Context, dir, mapFile, output string) error {
	prog := newProgress(c.Logger)
	m, err := c.scan(ctx, dir, mapFile)
	if err != nil {
		return err
	}
	doc := m.Document()
	if err := graph.WriteFile(doc, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scanned %d scripts", len(m.Scripts)))

	printSuccess("Wrote require map")
	printFile(output)
	printStats(len(doc.Nodes), len(doc.Links), false)
	if n := len(m.Unresolved); n > 0 {
		printWarning("%d requires could not be resolved", n)
		for i, u := range m.Unresolved {
			if i == maxUnresolvedShown {
				printDetail("... and %d more (see --verbose)", n-maxUnresolvedShown)
				break
			}
			printDetail("%s:%d %s (%s)", u.Script, u.Line, u.Expr, u.Reason)
		}
	}
	printNewline()
	if filepath.Clean(output) == filepath.Clean(graph.DefaultPath) {
		printNextStep("View", appName+" serve")
	} else {
		printNextStep("View", appName+" serve "+output)
	}
	return nil
}
