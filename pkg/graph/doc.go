// Package graph provides the node-link document model for reveal.
//
// # Document Format
//
// The viewer consumes a JSON document of nodes and links:
//
//	{
//	  "nodes": [{"id": "Shared.Util", "group": 1}, {"id": "Client.Main", "group": 2}],
//	  "links": [{"source": "Shared.Util", "target": "Client.Main", "value": 4}]
//	}
//
// Node and link ids may be JSON strings or numbers. Nodes may carry x/y
// (initial position) and fx/fy (pinned position).
//
// # Lifecycle
//
// A [Document] is loaded once with [Load], [ReadFile] or [Fetch] and then
// mutated in place: the force simulation writes positions and velocities,
// drag gestures set and clear pins. Links are resolved to node pointers by
// [Resolve]; a link naming a missing node is an UNRESOLVED_REFERENCE error,
// never a skipped link.
//
// # Layouts
//
// [Layout] is a position snapshot keyed by node id, used to cache settled
// layouts and to persist snapshots of an interactive session:
//
//	l := graph.Capture(doc, 330, 360)
//	data, _ := graph.MarshalLayout(l)
//	// later, on a fresh copy
//	l.Apply(doc2)
//
// # Concurrency
//
// Documents are not safe for concurrent mutation. The force loop is the only
// writer while a simulation is running.
package graph
