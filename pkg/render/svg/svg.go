// Package svg writes a graph view as a standalone SVG document with the
// same element structure the live page builds: an outer canvas, an inner
// group offset by the margins, a "links" group of lines and one "node"
// group per node holding a circle and a label.
package svg

import (
	"bytes"
	"context"
	"fmt"
	"html"

	svgo "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/reveal/pkg/render"
	"github.com/matzehuels/reveal/pkg/scale"
	"github.com/matzehuels/reveal/pkg/view"
)

// DefaultBackground is painted behind the graph so white links and labels
// stay visible outside the page.
const DefaultBackground = "#242424"

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	background string
	labels     bool
}

// WithBackground sets the canvas fill; "" leaves it transparent.
func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }

// WithoutLabels omits the node id labels.
func WithoutLabels() Option { return func(r *renderer) { r.labels = false } }

// Render writes the current element geometry of v as SVG.
func Render(v *view.View, opts ...Option) []byte {
	r := renderer{background: DefaultBackground, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	o := v.Options()
	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	canvas.Start(o.Width, o.Height)
	if r.background != "" {
		canvas.Rect(0, 0, o.Width, o.Height, attr("fill", r.background))
	}

	canvas.Group(attr("transform", v.Transform()))

	canvas.Group(attr("class", "links"))
	for _, l := range v.Lines() {
		line(canvas, l)
	}
	canvas.Gend()

	for _, g := range v.Groups() {
		canvas.Group(attr("class", "node"), attr("transform", g.Transform()), attr("data-id", g.Label))
		canvas.Circle(0, 0, g.Radius, attr("fill", g.Fill))
		if r.labels {
			canvas.Text(0, 0, g.Label, attr("dx", scale.FormatNumber(g.LabelDX)), attr("fill", g.LabelFill))
		}
		canvas.Gend()
	}

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

// RenderPNG rasterizes [Render] output at the given scale.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, v *view.View, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(ctx, Render(v, opts...), scale)
}

// line writes l with endpoints at the precision of the node transforms, so
// link ends meet the circles they join. svgo rounds line coordinates to two
// decimals.
func line(canvas *svgo.SVG, l *view.Line) {
	fmt.Fprintf(canvas.Writer, "<line %s %s %s %s %s %s/>\n",
		attr("x1", scale.FormatNumber(l.X1)), attr("y1", scale.FormatNumber(l.Y1)),
		attr("x2", scale.FormatNumber(l.X2)), attr("y2", scale.FormatNumber(l.Y2)),
		attr("stroke-width", scale.FormatNumber(l.StrokeWidth)), attr("stroke", l.Stroke))
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}
