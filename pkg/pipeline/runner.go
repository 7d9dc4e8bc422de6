package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reveal/pkg/cache"
)

// Runner executes pipeline stages with caching.
//
// A Runner holds only the cache, keyer and logger; each run builds its own
// document and view, so one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the per-kind cache TTLs when non-zero.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer uses [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → settle → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	result := &Result{}

	start := time.Now()
	doc, hash, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document, result.DocumentHash = doc, hash
	result.Stats.LoadTime = time.Since(start)
	result.Stats.NodeCount, result.Stats.LinkCount = len(doc.Nodes), len(doc.Links)
	opts.Logger.Info("loaded document",
		"nodes", len(doc.Nodes),
		"links", len(doc.Links),
		"duration", result.Stats.LoadTime)

	start = time.Now()
	settled, err := r.Settle(ctx, doc, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}
	result.View, result.Layout = settled.View, settled.Layout
	result.Stats.Ticks = settled.Ticks
	result.Stats.SettleTime = time.Since(start)
	result.CacheInfo.LayoutHit = settled.Hit
	opts.Logger.Info("settled layout",
		"ticks", settled.Ticks,
		"alpha", fmt.Sprintf("%.4f", settled.View.Simulation().Alpha()),
		"cached", settled.Hit,
		"duration", result.Stats.SettleTime)

	start = time.Now()
	artifacts, hit, err := r.Render(ctx, settled.View, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
