package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/reveal/pkg/config"
	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/store"
)

const fixture = `{
  "nodes": [{"id": "a", "group": 1}, {"id": "b", "group": 1}, {"id": "c", "group": 2}],
  "links": [{"source": "a", "target": "b", "value": 4}, {"source": "b", "target": "c", "value": 1}]
}`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deps.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png", []string{"svg", "png"}},
		{" dot , json ,", []string{"dot", "json"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		source  string
		formats []string
		want    map[string]string
	}{
		{"default source", "", "", []string{"svg"}, map[string]string{"svg": "./require-map.svg"}},
		{"from source", "", "maps/deps.json", []string{"svg", "dot"}, map[string]string{"svg": "maps/deps.svg", "dot": "maps/deps.dot"}},
		{"single output", "graph.out", "deps.json", []string{"png"}, map[string]string{"png": "graph.out"}},
		{"base strips format ext", "out/g.svg", "deps.json", []string{"svg", "json"}, map[string]string{"svg": "out/g.svg", "json": "out/g.json"}},
		{"url", "", "https://example.com/maps/game.json", []string{"svg"}, map[string]string{"svg": "game.svg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPaths(tt.output, tt.source, tt.formats); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outputPaths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunRender(t *testing.T) {
	c, buf := testCLI(t)
	src := writeFixture(t)
	base := filepath.Join(t.TempDir(), "out", "graph")

	err := c.runRender(context.Background(), src, renderOpts{formats: "svg,json,dot", output: base})
	if err != nil {
		t.Fatalf("runRender: %v", err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(svg), "<circle") != 3 {
		t.Errorf("svg should draw 3 nodes")
	}
	doc, err := graph.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range doc.Nodes {
		if !n.Placed() {
			t.Errorf("node %s has no position in json output", n.ID)
		}
	}
	if _, err := os.Stat(base + ".dot"); err != nil {
		t.Error(err)
	}
	for _, want := range []string{"Rendered", "3 nodes", "2 links", "settle"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRunRenderFileCache(t *testing.T) {
	c, _ := testCLI(t)
	c.cfg.Cache.Backend = config.CacheFile
	c.cfg.Cache.Dir = t.TempDir()
	src := writeFixture(t)
	output := filepath.Join(t.TempDir(), "g.svg")

	for range 2 {
		if err := c.runRender(context.Background(), src, renderOpts{output: output}); err != nil {
			t.Fatalf("runRender: %v", err)
		}
	}
	entries, err := os.ReadDir(c.cfg.Cache.Dir)
	if err != nil || len(entries) == 0 {
		t.Errorf("cache directory is empty: %v", err)
	}
}

func TestRunRenderSnapshot(t *testing.T) {
	c, _ := testCLI(t)
	src := writeFixture(t)

	st, err := store.NewFileStore(c.cfg.Store.Dir)
	if err != nil {
		t.Fatal(err)
	}
	snap := store.New("fixed", "", graph.Layout{Width: 330, Height: 360, Positions: []graph.Position{
		{ID: "a", X: 10, Y: 20},
		{ID: "b", X: 30, Y: 40},
		{ID: "c", X: 50, Y: 60},
	}})
	if err := st.Save(context.Background(), snap); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(t.TempDir(), "g.json")
	if err := c.runRender(context.Background(), src, renderOpts{formats: "json", output: output, snapshot: snap.ID}); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	doc, err := graph.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if a := doc.Nodes[0]; a.X != 10 || a.Y != 20 {
		t.Errorf("a at (%v, %v), want the snapshot position (10, 20)", a.X, a.Y)
	}
}

func TestRunRenderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  func(t *testing.T) string
		opts renderOpts
		code errors.Code
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }, renderOpts{}, errors.ErrCodeFileNotFound},
		{"bad format", writeFixture, renderOpts{formats: "gif"}, errors.ErrCodeInvalidFormat},
		{"bad engine", writeFixture, renderOpts{engine: "dot"}, errors.ErrCodeInvalidInput},
		{"unknown snapshot", writeFixture, renderOpts{snapshot: "7a1c1f4e-3a59-4a8e-9a36-0cf1c8d2b001"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testCLI(t)
			opts := tt.opts
			opts.output = filepath.Join(t.TempDir(), "out")
			err := c.runRender(context.Background(), tt.src(t), opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
