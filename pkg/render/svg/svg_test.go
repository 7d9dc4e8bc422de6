package svg

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/view"
)

func fixtureView(t *testing.T) *view.View {
	t.Helper()
	doc, err := graph.Unmarshal([]byte(`{
		"nodes": [{"id": "a", "group": 1}, {"id": "b", "group": 2}],
		"links": [{"source": "a", "target": "b", "value": 9}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	v, err := view.Init(doc, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	v.Settle(0)
	return v
}

func TestRenderStructure(t *testing.T) {
	v := fixtureView(t)
	out := string(Render(v))

	checks := []struct {
		name, want string
		count      int
	}{
		{"inner group", `transform="translate(40, 10)"`, 1},
		{"links group", `class="links"`, 1},
		{"lines", "<line", 1},
		{"stroke width", `stroke-width="3"`, 1},
		{"stroke", `stroke="#ffffff"`, 1},
		{"node groups", `class="node"`, 2},
		{"circles", "<circle", 2},
		{"label offset", `dx="6"`, 2},
		{"first color", `fill="#1f77b4"`, 1},
		{"second color", `fill="#ff7f0e"`, 1},
		{"background", `fill="#242424"`, 1},
	}
	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if got := strings.Count(out, c.want); got != c.count {
				t.Errorf("%q appears %d times, want %d", c.want, got, c.count)
			}
		})
	}
	for _, g := range v.Groups() {
		if !strings.Contains(out, `transform="`+g.Transform()+`"`) {
			t.Errorf("missing node transform %s", g.Transform())
		}
	}
}

func TestRenderWellFormed(t *testing.T) {
	out := Render(fixtureView(t))
	dec := xml.NewDecoder(strings.NewReader(string(out)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestRenderOptions(t *testing.T) {
	out := string(Render(fixtureView(t), WithBackground(""), WithoutLabels()))
	if strings.Contains(out, "<text") {
		t.Error("labels should be omitted")
	}
	if strings.Contains(out, "<rect") {
		t.Error("background should be omitted")
	}
}

func TestLineEndsMatchNodeTransforms(t *testing.T) {
	v := fixtureView(t)
	out := string(Render(v))

	l := v.Lines()[0]
	src, dst := v.Groups()[0], v.Groups()[1]
	// Both ends must be written with the digits the node transforms use.
	for _, c := range []struct{ end, transform string }{
		{`x1="` + coord(src.Transform(), 0) + `"`, src.Transform()},
		{`y1="` + coord(src.Transform(), 1) + `"`, src.Transform()},
		{`x2="` + coord(dst.Transform(), 0) + `"`, dst.Transform()},
		{`y2="` + coord(dst.Transform(), 1) + `"`, dst.Transform()},
	} {
		if !strings.Contains(out, c.end) {
			t.Errorf("line %+v: missing %s for node at %s", l, c.end, c.transform)
		}
	}
}

// coord returns the i-th coordinate of a "translate(x,y)" transform.
func coord(transform string, i int) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(transform, "translate("), ")")
	return strings.Split(inner, ",")[i]
}
