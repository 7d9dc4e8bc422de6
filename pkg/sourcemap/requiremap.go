package sourcemap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
)

// Dependency is a module required by a script.
type Dependency struct {
	Module *Node
	// Sites is the number of require calls naming Module.
	Sites int
	Lines []int
}

// Unresolved is a require call that could not be followed to a module.
type Unresolved struct {
	Script string `json:"script"`
	Line   int    `json:"line"`
	Expr   string `json:"expr"`
	Reason string `json:"reason"`
}

// RequireMap is the resolved require graph of a project.
type RequireMap struct {
	Root *Node
	// Scripts lists every scanned script in sourcemap order.
	Scripts []*Node
	// Requires maps a script to its dependencies in first-required order.
	Requires   map[*Node][]*Dependency
	Unresolved []Unresolved
}

// Options configures [Scan].
type Options struct {
	// Sourcemap is the sourcemap path; relative paths are under the
	// project directory. Defaults to [DefaultFile].
	Sourcemap string
	// Concurrency bounds parallel file reads; 0 means GOMAXPROCS.
	Concurrency int
	Logger      *log.Logger
}

// Scan reads a project's sourcemap, scans every script's source for
// requires and resolves them against the instance tree. Script file paths
// are relative to the project directory. A script whose file cannot be read
// fails the scan; a require that cannot be resolved is recorded in
// Unresolved.
func Scan(ctx context.Context, dir string, opts Options) (*RequireMap, error) {
	if opts.Sourcemap == "" {
		opts.Sourcemap = DefaultFile
	}
	if !filepath.IsAbs(opts.Sourcemap) {
		opts.Sourcemap = filepath.Join(dir, opts.Sourcemap)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	root, err := ReadFile(opts.Sourcemap)
	if err != nil {
		return nil, err
	}

	var scripts []*Node
	root.Walk(func(n *Node) { scripts = append(scripts, n) })
	logger.Debug("walked sourcemap", "scripts", len(scripts))

	found := make([][]Require, len(scripts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, s := range scripts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(filepath.Join(dir, s.LuaFile()))
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "read source of %s", s.ID())
			}
			found[i] = ScanSource(string(src))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &RequireMap{Root: root, Scripts: scripts, Requires: make(map[*Node][]*Dependency, len(scripts))}
	for i, s := range scripts {
		m.add(s, found[i])
	}
	for _, u := range m.Unresolved {
		logger.Debug("unresolved require", "script", u.Script, "line", u.Line, "expr", u.Expr, "reason", u.Reason)
	}
	return m, nil
}

func (m *RequireMap) add(script *Node, reqs []Require) {
	deps := make(map[*Node]*Dependency)
	m.Requires[script] = nil
	for _, r := range reqs {
		mod, err := Resolve(m.Root, script, r.Path)
		if err != nil {
			m.Unresolved = append(m.Unresolved, Unresolved{Script: script.ID(), Line: r.Line, Expr: r.Expr, Reason: err.Error()})
			continue
		}
		d, ok := deps[mod]
		if !ok {
			d = &Dependency{Module: mod}
			deps[mod] = d
			m.Requires[script] = append(m.Requires[script], d)
		}
		d.Sites++
		d.Lines = append(d.Lines, r.Line)
	}
}

// Lookup finds a scanned script by id, as given by [RequireMap.IDs], or by
// source file path.
func (m *RequireMap) Lookup(key string) *Node {
	ids, _ := m.IDs()
	clean := filepath.ToSlash(filepath.Clean(key))
	for _, s := range m.Scripts {
		if ids[s] == key || filepath.ToSlash(filepath.Clean(s.LuaFile())) == clean {
			return s
		}
	}
	return nil
}

// Dependents returns the scripts that require mod, sorted by id.
func (m *RequireMap) Dependents(mod *Node) []*Node {
	var out []*Node
	for _, s := range m.Scripts {
		for _, d := range m.Requires[s] {
			if d.Module == mod {
				out = append(out, s)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Document converts the map into the viewer's node-link format. Every
// script is a node, grouped by the top-level service it lives under
// (numbered from 1 in first-seen order). Each dependency is a link from the
// required module to the requiring script weighted by its require sites.
// Required modules that were not scanned, such as vendored packages, are
// added as nodes after the scripts. Node ids are those of [RequireMap.IDs].
func (m *RequireMap) Document() *graph.Document {
	ids, order := m.IDs()
	doc := &graph.Document{Nodes: make([]*graph.Node, 0, len(order))}
	groups := make(map[*Node]int)
	for _, n := range order {
		svc := n.Service()
		g, ok := groups[svc]
		if !ok {
			g = len(groups) + 1
			groups[svc] = g
		}
		doc.Nodes = append(doc.Nodes, graph.NewNode(ids[n], g))
	}
	for _, s := range m.Scripts {
		for _, d := range m.Requires[s] {
			doc.Links = append(doc.Links, &graph.Link{
				SourceID: ids[d.Module],
				TargetID: ids[s],
				Value:    float64(d.Sites),
			})
		}
	}
	return doc
}

// IDs assigns every script and required module a unique id. Sibling
// instances sharing a name get a "#n" suffix, numbered in the order the
// scripts are listed followed by the modules they require. order lists the
// instances in that order.
func (m *RequireMap) IDs() (ids map[*Node]string, order []*Node) {
	ids = make(map[*Node]string)
	taken := make(map[string]bool)
	add := func(n *Node) {
		if _, ok := ids[n]; ok {
			return
		}
		id := n.ID()
		for k := 2; taken[id]; k++ {
			id = fmt.Sprintf("%s#%d", n.ID(), k)
		}
		ids[n], taken[id] = id, true
		order = append(order, n)
	}
	for _, s := range m.Scripts {
		add(s)
	}
	for _, s := range m.Scripts {
		for _, d := range m.Requires[s] {
			add(d.Module)
		}
	}
	return ids, order
}
