package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/reveal/pkg/cache"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/observability"
	"github.com/matzehuels/reveal/pkg/render"
	"github.com/matzehuels/reveal/pkg/render/nodelink"
	"github.com/matzehuels/reveal/pkg/render/svg"
	"github.com/matzehuels/reveal/pkg/view"
)

// Render writes the current geometry of v in every requested format. The
// result is cached under the hash of the node positions and the document
// structure, so a layout that was settled again or restored from the cache
// reuses its artifacts while a changed group or link value does not.
//
// Formats are rendered concurrently; v must not be stepped meanwhile.
func (r *Runner) Render(ctx context.Context, v *view.View, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := renderHash(v)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout: %w", err)
	}
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, f := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keys[f])
			if err != nil || !hit {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
		clear(artifacts)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(gctx, v, f, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", f, err)
			}
			mu.Lock()
			artifacts[f] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	for f, data := range artifacts {
		if err := r.Cache.Set(ctx, keys[f], data, r.ttl(cache.ArtifactTTL)); err != nil {
			opts.Logger.Warn("cache artifact", "format", f, "error", err)
		}
	}
	return artifacts, false, nil
}

func renderFormat(ctx context.Context, v *view.View, format string, opts Options) (data []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err) }()

	switch format {
	case FormatJSON:
		return graph.Marshal(v.Document())
	case FormatDOT:
		return []byte(nodelink.ToDOT(v, dotOptions(opts))), nil
	}

	if opts.Engine == EngineGraphviz {
		dot := nodelink.ToDOT(v, dotOptions(opts))
		switch format {
		case FormatSVG:
			return nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			return nodelink.RenderPNG(ctx, dot)
		case FormatPDF:
			out, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			return render.ToPDF(ctx, out)
		}
		return nil, ValidateFormat(format)
	}

	doc := svg.Render(v, svgOptions(opts)...)
	switch format {
	case FormatSVG:
		return doc, nil
	case FormatPNG:
		return render.ToPNG(ctx, doc, opts.Scale)
	case FormatPDF:
		return render.ToPDF(ctx, doc)
	}
	return nil, ValidateFormat(format)
}

func svgOptions(opts Options) []svg.Option {
	var out []svg.Option
	if opts.Background != "" {
		out = append(out, svg.WithBackground(opts.Background))
	}
	if opts.NoLabels {
		out = append(out, svg.WithoutLabels())
	}
	return out
}

func dotOptions(opts Options) nodelink.Options {
	o := nodelink.DefaultOptions()
	if opts.Background != "" {
		o.Background = opts.Background
	}
	o.Labels = !opts.NoLabels
	return o
}

// renderHash hashes the node positions together with the groups, links and
// link values of the document. Tick count, temperature, velocities and pins
// are left out.
func renderHash(v *view.View) (string, error) {
	l := v.Snapshot()
	l.Ticks, l.Alpha = 0, 0
	positions, err := graph.MarshalLayout(l)
	if err != nil {
		return "", err
	}
	structure, err := graph.Marshal(structureOf(v.Document()))
	if err != nil {
		return "", err
	}
	return cache.Hash(append(append(positions, 0), structure...)), nil
}

// structureOf copies doc without any simulation state.
func structureOf(doc *graph.Document) *graph.Document {
	out := &graph.Document{
		Nodes: make([]*graph.Node, len(doc.Nodes)),
		Links: make([]*graph.Link, len(doc.Links)),
	}
	for i, n := range doc.Nodes {
		out.Nodes[i] = graph.NewNode(n.ID, n.Group)
	}
	for i, l := range doc.Links {
		out.Links[i] = &graph.Link{SourceID: l.SourceID, TargetID: l.TargetID, Value: l.Value}
	}
	return out
}
