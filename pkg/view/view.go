// Package view is the graph view initializer: it binds a node-link
// document to a canvas, a force simulation and drag gestures.
//
// [Init] builds one [Line] per link and one [NodeGroup] per node, starts a
// simulation with link, charge and center forces, and rebinds element
// geometry on every tick. Renderers and the live server read the elements
// or subscribe to [Frame]s.
//
// A View is not safe for concurrent use; it belongs to whichever goroutine
// steps its simulation, normally a [force.Loop].
package view

import (
	"context"
	"fmt"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/force"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/scale"
)

// Line is the rendered element of a link.
type Line struct {
	Link           *graph.Link
	X1, Y1, X2, Y2 float64
	StrokeWidth    float64
	Stroke         string
}

// NodeGroup is the rendered element of a node: a translated group holding
// a circle and a label.
type NodeGroup struct {
	Node *graph.Node
	// X and Y are the group translation.
	X, Y float64

	Radius    float64
	Fill      string
	Label     string
	LabelDX   float64
	LabelFill string
}

// Transform returns the group's SVG transform attribute.
func (g *NodeGroup) Transform() string {
	return fmt.Sprintf("translate(%s,%s)", formatCoord(g.X), formatCoord(g.Y))
}

// View is an initialized graph view.
type View struct {
	doc   *graph.Document
	opts  Options
	sim   *force.Simulation
	color *scale.Ordinal[int]

	lines  []*Line
	groups []*NodeGroup
	byID   map[string]*graph.Node

	active   int
	dragging map[string]bool

	subs   map[int]func(Frame)
	nextID int
}

// Open loads a document from a path or URL and initializes a view of it.
func Open(ctx context.Context, source string, opts Options) (*View, error) {
	doc, err := graph.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return Init(doc, opts)
}

// Init builds the canvas elements for doc and starts its simulation. The
// document is mutated in place from here on. A link naming a missing node
// fails with UNRESOLVED_REFERENCE and nothing is built.
func Init(doc *graph.Document, opts Options) (*View, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}
	if err := graph.Validate(doc); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := graph.Resolve(doc.Nodes, doc.Links); err != nil {
		return nil, err
	}

	sim := force.New(doc.Nodes, opts.Simulation)
	if err := sim.AddForce("link", force.NewLink(doc.Links, opts.LinkDistance)); err != nil {
		return nil, err
	}
	charge := force.NewManyBody(opts.Charge)
	if opts.Theta > 0 {
		charge.Theta = opts.Theta
	}
	if opts.DistanceMin > 0 {
		charge.DistanceMin = opts.DistanceMin
	}
	charge.DistanceMax = opts.DistanceMax
	if err := sim.AddForce("charge", charge); err != nil {
		return nil, err
	}
	center := force.NewCenter(opts.InnerWidth()/2, opts.InnerHeight()/2)
	if opts.CenterStrength > 0 {
		center.Strength = opts.CenterStrength
	}
	if err := sim.AddForce("center", center); err != nil {
		return nil, err
	}

	v := &View{
		doc:      doc,
		opts:     opts,
		sim:      sim,
		color:    scale.NewOrdinal[int](opts.Palette, opts.Wrap),
		byID:     graph.Index(doc.Nodes),
		dragging: make(map[string]bool),
		subs:     make(map[int]func(Frame)),
	}
	v.build()
	sim.On(force.EventTick, v.ticked)
	sim.On(force.EventEnd, v.publish)
	v.bind()
	return v, nil
}

func (v *View) build() {
	v.lines = make([]*Line, len(v.doc.Links))
	for i, l := range v.doc.Links {
		v.lines[i] = &Line{Link: l, StrokeWidth: scale.Sqrt(l.Value), Stroke: v.opts.LinkStroke}
	}
	v.groups = make([]*NodeGroup, len(v.doc.Nodes))
	for i, n := range v.doc.Nodes {
		v.groups[i] = &NodeGroup{
			Node:      n,
			Radius:    v.opts.Radius,
			Fill:      v.color.Color(n.Group),
			Label:     n.ID,
			LabelDX:   v.opts.LabelOffset,
			LabelFill: v.opts.LabelFill,
		}
	}
}

func (v *View) ticked() {
	v.bind()
	v.publish()
}

// bind copies node positions into line endpoints and group translations.
func (v *View) bind() {
	for _, l := range v.lines {
		l.X1, l.Y1 = l.Link.Source.X, l.Link.Source.Y
		l.X2, l.Y2 = l.Link.Target.X, l.Link.Target.Y
	}
	for _, g := range v.groups {
		g.X, g.Y = g.Node.X, g.Node.Y
	}
}

// Document returns the bound document.
func (v *View) Document() *graph.Document { return v.doc }

// Simulation returns the view's simulation.
func (v *View) Simulation() *force.Simulation { return v.sim }

// Options returns the options the view was built with.
func (v *View) Options() Options { return v.opts }

// Lines returns the link elements in document order.
func (v *View) Lines() []*Line { return v.lines }

// Groups returns the node elements in document order.
func (v *View) Groups() []*NodeGroup { return v.groups }

// Transform returns the inner group transform that applies the margins.
func (v *View) Transform() string {
	return fmt.Sprintf("translate(%s, %s)", formatCoord(v.opts.Margin.Left), formatCoord(v.opts.Margin.Top))
}

// Settle steps the simulation until it stops or maxTicks steps have run,
// firing tick events as it goes. It returns the number of steps.
func (v *View) Settle(maxTicks int) int {
	return v.sim.Run(maxTicks)
}

// Restore applies a saved layout to the document and rebinds the elements.
// Nodes are released from their pins except those held by a gesture in
// progress, which stay pinned at their restored position. It returns the
// number of nodes positioned.
func (v *View) Restore(l graph.Layout) int {
	n := l.Apply(v.doc)
	for id := range v.dragging {
		node := v.byID[id]
		node.Pin(node.X, node.Y)
	}
	v.bind()
	return n
}

// Snapshot captures the current positions.
func (v *View) Snapshot() graph.Layout {
	l := graph.Capture(v.doc, v.opts.InnerWidth(), v.opts.InnerHeight())
	l.Ticks, l.Alpha = v.sim.Ticks(), v.sim.Alpha()
	return l
}

func formatCoord(f float64) string {
	return scale.FormatNumber(f)
}
