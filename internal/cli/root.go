package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration named by --config (or found in the default locations)
// is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "reveal draws require maps as interactive force-directed graphs",
		Long: `reveal draws a require map, a JSON document of modules and the
requires between them, as a force-directed node-link diagram. It can serve
the diagram to a browser where nodes can be dragged, settle it headlessly
into SVG, DOT, PNG or PDF files, and produce the require map itself from a
Rojo project's sourcemap.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./reveal.toml, then $XDG_CONFIG_HOME/reveal/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
