package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/reveal/pkg/cache"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/observability"
	"github.com/matzehuels/reveal/pkg/view"
)

// settleChunk is the number of ticks run between context checks.
const settleChunk = 50

// Settled is the outcome of the settle stage.
type Settled struct {
	View   *view.View
	Layout graph.Layout
	// Ticks is the number of simulation steps run; 0 on a cache hit.
	Ticks int
	Hit   bool
}

// Settle initializes a view of doc and steps its simulation until it stops
// or opts.MaxTicks steps have run. docHash keys the layout cache; an empty
// hash disables caching for this call.
//
// When opts.Initial covers every node the snapshot is used as the settled
// layout without stepping or caching. A partial snapshot positions the
// nodes it names and the simulation settles the rest.
func (r *Runner) Settle(ctx context.Context, doc *graph.Document, docHash string, opts Options) (*Settled, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	v, err := view.Init(doc, opts.View)
	if err != nil {
		return nil, err
	}

	if opts.Initial != nil {
		n := v.Restore(*opts.Initial)
		opts.Logger.Debug("applied initial layout", "positioned", n, "nodes", len(doc.Nodes))
		if n == len(doc.Nodes) {
			v.Simulation().Stop()
			return &Settled{View: v, Layout: v.Snapshot()}, nil
		}
		docHash = ""
	}

	var key string
	if docHash != "" {
		key = r.Keyer.LayoutKey(docHash, opts.LayoutKeyOpts())
		if !opts.Refresh {
			if l, ok := r.cachedLayout(ctx, key, v); ok {
				return &Settled{View: v, Layout: l, Hit: true}, nil
			}
		}
	}

	ticks, err := r.run(ctx, v, opts.MaxTicks)
	if err != nil {
		return nil, err
	}
	l := v.Snapshot()

	if key != "" {
		if data, err := graph.MarshalLayout(l); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.LayoutTTL)); err != nil {
				opts.Logger.Warn("cache layout", "error", err)
			}
		}
	}
	return &Settled{View: v, Layout: l, Ticks: ticks}, nil
}

// cachedLayout restores a cached layout onto v. Layouts that no longer
// match the document are ignored.
func (r *Runner) cachedLayout(ctx context.Context, key string, v *view.View) (graph.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil || len(l.Positions) != len(v.Document().Nodes) {
		return graph.Layout{}, false
	}
	if v.Restore(l) != len(l.Positions) {
		return graph.Layout{}, false
	}
	v.Simulation().SetAlpha(l.Alpha)
	v.Simulation().Stop()
	return l, true
}

// run steps the simulation in chunks so a cancelled context stops a long
// settle between chunks.
func (r *Runner) run(ctx context.Context, v *view.View, maxTicks int) (int, error) {
	hooks := observability.Pipeline()
	hooks.OnSettleStart(ctx, len(v.Document().Nodes))
	start := time.Now()

	ticks := 0
	for ticks < maxTicks && v.Simulation().Running() {
		if err := ctx.Err(); err != nil {
			hooks.OnSettleComplete(ctx, ticks, time.Since(start), err)
			return ticks, err
		}
		ticks += v.Settle(min(settleChunk, maxTicks-ticks))
	}
	hooks.OnSettleComplete(ctx, ticks, time.Since(start), nil)
	return ticks, nil
}
