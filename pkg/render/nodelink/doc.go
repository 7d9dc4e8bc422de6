// Package nodelink exports a settled graph view as Graphviz DOT and renders
// it with the embedded Graphviz.
//
// Positions come from the force simulation, not from Graphviz: every node
// is emitted with a pinned pos attribute and laid out with neato, which
// keeps pinned nodes in place.
//
//	dot := nodelink.ToDOT(v, nodelink.DefaultOptions())
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
