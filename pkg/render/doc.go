// Package render provides format conversion shared by the reveal renderers.
//
// # Renderers
//
//   - [svg]: the view canvas as a standalone SVG document
//   - [nodelink]: Graphviz DOT export of a settled layout, rendered with neato
//
// # Format Conversion
//
// [ToPNG] and [ToPDF] convert any SVG using the external rsvg-convert tool
// (from librsvg):
//
//	doc := svg.Render(v)
//	png, err := render.ToPNG(ctx, doc, 2.0)
//
// [svg]: github.com/matzehuels/reveal/pkg/render/svg
// [nodelink]: github.com/matzehuels/reveal/pkg/render/nodelink
package render
