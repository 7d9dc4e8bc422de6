// Package sourcemap produces require maps from Rojo projects.
//
// A Rojo sourcemap.json describes the instance tree of a Roblox project and
// the source file behind each script. [Scan] walks that tree, scans every
// script for require calls and resolves their instance paths:
//
//	m, err := sourcemap.Scan(ctx, "./my-game", sourcemap.Options{})
//	doc := m.Document()                   // node-link JSON for the viewer
//	fmt.Println(m.Tree(m.Lookup("ServerScriptService.Main"), 3))
//
// # Require paths
//
// Arguments of the form script.Parent.Util, game:GetService("X").Y,
// script["Name"] and x:WaitForChild("Name") are understood, as are simple
// local aliases of such paths. Anything else, such as numeric asset ids or
// computed paths, is ignored. Requires that name a missing instance or a
// non-ModuleScript are kept as [Unresolved] diagnostics instead of links.
//
// Vendored package internals (any container named _Index) are not scanned.
package sourcemap
