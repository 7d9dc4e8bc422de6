package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/server"
	"github.com/matzehuels/reveal/pkg/view"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "serve [require-map.json | url]",
		Short: "Serve the interactive graph view",
		Long: `Serve the interactive graph view.

The page draws the document into #my_dataviz and animates the simulation as
it runs on the server. Nodes can be dragged; every connected browser sees
the same layout. Snapshots of the layout can be saved from the page and
restored later, here or with 'reveal render --snapshot'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			return c.runServe(cmd.Context(), source, addr, snapshot)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "start from a saved snapshot id")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, source, addr, snapshot string) error {
	cfg := c.settings()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	p, err := c.pipelineOptions(ctx, source, renderOpts{snapshot: snapshot})
	if err != nil {
		return err
	}
	doc, hash, err := c.loader().Load(ctx, p)
	if err != nil {
		return err
	}
	v, err := view.Init(doc, p.View)
	if err != nil {
		return err
	}
	if p.Initial != nil {
		n := v.Restore(*p.Initial)
		c.Logger.Info("restored snapshot", "id", snapshot, "nodes", n)
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(v, server.Options{
		Addr:         addr,
		Title:        displaySource(source),
		TickInterval: cfg.Simulation.TickInterval.Duration,
		Store:        st,
		DocumentHash: hash,
		Logger:       c.Logger,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %s", displaySource(source))
	printStats(len(doc.Nodes), len(doc.Links), false)
	printNextStep("Open", "http://"+addr)
	return srv.Run(ctx)
}
