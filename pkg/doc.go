// Package pkg holds the libraries behind reveal, a force-directed viewer
// for Luau require maps.
//
// # Overview
//
// A require map is a node-link JSON document: scripts are nodes grouped by
// the service they live under, and each require is a link weighted by its
// number of call sites. reveal lays the document out with a force
// simulation and shows it in a browser, a terminal or a static file.
//
// # Data Flow
//
//	Rojo project (sourcemap.json + sources)
//	         ↓
//	    [sourcemap] scan requires → require-map.json
//	         ↓
//	    [graph] load and resolve the document
//	         ↓
//	    [view] canvas elements bound to a [force] simulation
//	         ↓
//	    [server] live page over WebSocket   or   [render] SVG/DOT/PNG/PDF/JSON
//
// [pipeline] runs load → settle → render with layouts and artifacts kept in
// a [cache]. Snapshots of interactive sessions are kept in a [store].
//
// # Packages
//
// Domain: [graph], [force], [view], [scale], [sourcemap].
//
// Outputs: [render], [render/svg], [render/nodelink], [server].
//
// Infrastructure: [cache], [store], [config], [errors], [observability],
// [buildinfo].
package pkg
