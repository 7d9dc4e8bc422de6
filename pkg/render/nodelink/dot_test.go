package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/view"
)

func fixtureView(t *testing.T) *view.View {
	t.Helper()
	doc, err := graph.Unmarshal([]byte(`{
		"nodes": [{"id": "a", "group": 1}, {"id": "b", "group": 1}],
		"links": [{"source": "a", "target": "b", "value": 4}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.Init(doc, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestToDOT(t *testing.T) {
	v := fixtureView(t)
	a := v.Groups()[0].Node
	a.X, a.Y = 100, 60
	v.Restore(graph.Capture(v.Document(), 330, 360))

	dot := ToDOT(v, DefaultOptions())
	for _, want := range []string{
		"digraph G {",
		"layout=neato;",
		`"a" [pos="100,300!"`,
		`xlabel="a"`,
		`"a" -> "b" [penwidth=2`,
		`fillcolor="#1f77b4"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTNoLabels(t *testing.T) {
	dot := ToDOT(fixtureView(t), Options{})
	if strings.Contains(dot, "xlabel") {
		t.Error("labels should be omitted")
	}
	if !strings.Contains(dot, `bgcolor="transparent"`) {
		t.Error("empty background should be transparent")
	}
}

func TestRenderSVG(t *testing.T) {
	v := fixtureView(t)
	v.Settle(0)
	out, err := RenderSVG(context.Background(), ToDOT(v, DefaultOptions()))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) || !bytes.Contains(out, []byte(`viewBox="0 0`)) {
		t.Errorf("unexpected SVG output: %.200s", out)
	}
}

func TestRenderPNG(t *testing.T) {
	v := fixtureView(t)
	v.Settle(0)
	out, err := RenderPNG(context.Background(), ToDOT(v, DefaultOptions()))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="62" height="44"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
