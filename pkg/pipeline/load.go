package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/matzehuels/reveal/pkg/cache"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/observability"
)

// Load reads the document named by opts.Source, or takes opts.Document, and
// returns it with its content hash. The hash is taken before any simulation
// touches the nodes. Remote documents go through the HTTP cache unless
// opts.Refresh is set.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Document, string, error) {
	source := opts.Source
	if opts.Document != nil {
		source = "<memory>"
	} else if source == "" {
		source = graph.DefaultPath
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	doc := opts.Document
	var err error
	switch {
	case doc != nil:
		err = graph.Validate(doc)
	case graph.IsURL(source):
		doc, err = r.fetch(ctx, source, opts.Refresh)
	default:
		doc, err = graph.ReadFile(source)
	}
	if err != nil {
		hooks.OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, "", err
	}

	data, err := graph.Marshal(doc)
	if err != nil {
		hooks.OnLoadComplete(ctx, source, len(doc.Nodes), time.Since(start), err)
		return nil, "", err
	}
	hooks.OnLoadComplete(ctx, source, len(doc.Nodes), time.Since(start), nil)
	return doc, cache.Hash(data), nil
}

// fetch downloads a document, keyed by URL in the HTTP cache. The cached
// body is the re-encoded document, so a hit hashes the same as a download.
func (r *Runner) fetch(ctx context.Context, rawURL string, refresh bool) (*graph.Document, error) {
	key := r.Keyer.HTTPKey("doc", rawURL)
	if !refresh {
		data, ok, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read", "key", cache.KeyType(key), "error", err)
		}
		if ok {
			if doc, err := graph.Unmarshal(data); err == nil {
				return doc, nil
			}
		}
	}

	doc, err := graph.Fetch(ctx, http.DefaultClient, rawURL)
	if err != nil {
		return nil, err
	}
	if data, err := graph.Marshal(doc); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.HTTPTTL)); err != nil {
			r.Logger.Warn("cache document", "error", err)
		}
	}
	return doc, nil
}
