package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/pipeline"
	"github.com/matzehuels/reveal/pkg/scale"
)

// renderOpts holds the render command's flags.
type renderOpts struct {
	output     string
	formats    string
	engine     string
	ticks      int
	scale      float64
	background string
	noLabels   bool
	noCache    bool
	refresh    bool
	snapshot   string
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [require-map.json | url]",
		Short: "Settle a document headlessly and write it as SVG, DOT, PNG, PDF or JSON",
		Long: `Settle a document headlessly and write it as SVG, DOT, PNG, PDF or JSON.

The simulation runs until it cools down (or --ticks is reached) with the same
forces and styling as the interactive view. The json format writes the
document with the settled x/y positions filled in.

Settled layouts are cached; a second render of an unchanged document skips
the simulation.`,
		Example: `  reveal render
  reveal render deps.json -f svg,png -o out/deps
  reveal render --engine graphviz -f png
  reveal render --snapshot 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			return c.runRender(cmd.Context(), source, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (one format) or base path (several)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats: svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.engine, "engine", pipeline.EngineNative, "renderer for svg/png/pdf: native, graphviz")
	cmd.Flags().IntVar(&opts.ticks, "ticks", 0, "maximum simulation ticks (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "png scale factor")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (default from config, none if empty)")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results but store new ones")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "start from a saved snapshot id")

	return cmd
}

// pipelineOptions merges the config with the command's flags.
func (c *CLI) pipelineOptions(ctx context.Context, source string, opts renderOpts) (pipeline.Options, error) {
	cfg := c.settings()
	vopts, err := cfg.ViewOptions()
	if err != nil {
		return pipeline.Options{}, err
	}
	p := pipeline.Options{
		Source:     source,
		View:       vopts,
		MaxTicks:   cfg.Simulation.MaxTicks,
		Formats:    parseFormats(opts.formats),
		Engine:     opts.engine,
		Scale:      opts.scale,
		Background: cfg.Style.Background,
		NoLabels:   opts.noLabels,
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	}
	if opts.ticks > 0 {
		p.MaxTicks = opts.ticks
	}
	if opts.background != "" {
		p.Background = opts.background
	}
	if opts.snapshot != "" {
		st, err := c.newStore(ctx)
		if err != nil {
			return pipeline.Options{}, err
		}
		defer st.Close()
		snap, err := st.Get(ctx, opts.snapshot)
		if err != nil {
			return pipeline.Options{}, err
		}
		p.Initial = &snap.Layout
	}
	if err := p.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return p, nil
}

func (c *CLI) runRender(ctx context.Context, source string, opts renderOpts) error {
	p, err := c.pipelineOptions(ctx, source, opts)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Settling "+displaySource(source)+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, p)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths := outputPaths(opts.output, source, p.Formats)
	for _, f := range p.Formats {
		if err := writeOutput(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", displaySource(source))
	for _, f := range p.Formats {
		printFile(paths[f])
	}
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.LayoutHit)
	printNewline()
	printTable([]string{"stage", "time", "detail"}, [][]string{
		{"load", result.Stats.LoadTime.Round(100 * time.Microsecond).String(), shortHash(result.DocumentHash)},
		{"settle", result.Stats.SettleTime.Round(100 * time.Microsecond).String(), fmt.Sprintf("%d ticks, alpha %s", result.Stats.Ticks, scale.FormatNumber(result.Layout.Alpha))},
		{"render", result.Stats.RenderTime.Round(100 * time.Microsecond).String(), strings.Join(p.Formats, ", ")},
	})
	return nil
}

// outputPaths names one file per format. A single format writes to output
// as given; several formats use output, minus a known extension, as the
// base name. Without output the base is derived from the source.
func outputPaths(output, source string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = sourceBase(source)
	} else if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// sourceBase strips the extension from a local source, or takes the last
// path element of a URL and writes it into the working directory.
func sourceBase(source string) string {
	if source == "" {
		source = graph.DefaultPath
	}
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name := path.Base(u.Path)
		if name == "/" || name == "." {
			name = "require-map"
		}
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return strings.TrimSuffix(source, filepath.Ext(source))
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

func displaySource(source string) string {
	if source == "" {
		return graph.DefaultPath
	}
	return source
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
