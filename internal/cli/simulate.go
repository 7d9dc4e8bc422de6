package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/view"
)

func (c *CLI) simulateCommand() *cobra.Command {
	var (
		stay  bool
		ticks int
	)
	cmd := &cobra.Command{
		Use:   "simulate [require-map.json | url]",
		Short: "Watch the simulation cool down in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			return c.runSimulate(cmd.Context(), source, ticks, stay)
		},
	}
	cmd.Flags().BoolVar(&stay, "stay", false, "keep running after the simulation settles")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "stop after this many ticks (0 for no limit)")
	return cmd
}

func (c *CLI) runSimulate(ctx context.Context, source string, ticks int, stay bool) error {
	p, err := c.pipelineOptions(ctx, source, renderOpts{})
	if err != nil {
		return err
	}
	doc, _, err := c.loader().Load(ctx, p)
	if err != nil {
		return err
	}
	v, err := view.Init(doc, p.View)
	if err != nil {
		return err
	}

	m := NewSimulateModel(v, displaySource(source), c.settings().Simulation.TickInterval.Duration)
	m.MaxTicks, m.Stay = ticks, stay
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(SimulateModel); ok && fm.settled {
		printSuccess("Settled after %d ticks (%s)", v.Simulation().Ticks(), fm.elapsed.Round(time.Millisecond))
	}
	return nil
}
