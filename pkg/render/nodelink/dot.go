package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reveal/pkg/scale"
	"github.com/matzehuels/reveal/pkg/view"
)

// pointsPerInch converts canvas units (pixels at 72 dpi) to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Background is the graph bgcolor; "" means transparent.
	Background string
	// Labels places node ids next to their circles.
	Labels bool
}

// DefaultOptions matches the canvas: dark background, labels on.
func DefaultOptions() Options {
	return Options{Background: "#242424", Labels: true}
}

// ToDOT exports the current layout of v as Graphviz DOT. Every node carries
// a pinned position ("x,y!") so neato reproduces the force layout instead
// of computing its own. The y axis is flipped because Graphviz grows upward.
func ToDOT(v *view.View, opts Options) string {
	o := v.Options()
	h := o.InnerHeight()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	bg := opts.Background
	if bg == "" {
		bg = "transparent"
	}
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", bg)
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, label=\"\", penwidth=0, width=%s];\n",
		num(2*o.Radius/pointsPerInch))
	buf.WriteString("  edge [dir=none];\n\n")

	for _, g := range v.Groups() {
		attrs := fmt.Sprintf("pos=\"%s,%s!\", fillcolor=%q", num(g.X), num(h-g.Y), g.Fill)
		if opts.Labels {
			attrs += fmt.Sprintf(", xlabel=%q, fontcolor=%q, fontsize=10", g.Label, g.LabelFill)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", g.Label, attrs)
	}

	buf.WriteString("\n")
	for _, l := range v.Lines() {
		fmt.Fprintf(&buf, "  %q -> %q [penwidth=%s, color=%q];\n",
			l.Link.SourceID, l.Link.TargetID, num(l.StrokeWidth), l.Stroke)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT to PNG using the embedded Graphviz; no external
// tools are needed.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.NEATO)
	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with a pixel-sized
// one so the output scales like the canvas renderer's.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

func num(f float64) string { return scale.FormatNumber(f) }
