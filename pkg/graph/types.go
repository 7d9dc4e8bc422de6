package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DefaultPath is the relative path the viewer loads when no document is given.
const DefaultPath = "./require-map.json"

// =============================================================================
// Document - Node-Link Serialization
// =============================================================================

// Document is the node-link JSON format consumed by the viewer:
//
//	{
//	  "nodes": [{"id": "a", "group": 1}, {"id": "b", "group": 1}],
//	  "links": [{"source": "a", "target": "b", "value": 4}]
//	}
//
// A Document is loaded once and then mutated in place: the simulation owns
// node positions and velocities, drag gestures own the pinned positions.
type Document struct {
	Nodes []*Node `json:"nodes"`
	Links []*Link `json:"links"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a vertex of the dependency map.
//
// X and Y are NaN until the simulation places the node. FX and FY are the
// pinned position: while non-nil the simulation holds the node there.
type Node struct {
	ID    string
	Group int

	// Index is the position of the node in Document.Nodes, assigned by the
	// simulation at initialization.
	Index int

	X, Y   float64
	VX, VY float64
	FX, FY *float64
}

// NewNode returns an unplaced node.
func NewNode(id string, group int) *Node {
	return &Node{ID: id, Group: group, X: math.NaN(), Y: math.NaN()}
}

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = &x, &y
}

// Unpin releases the node back to the simulation.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Pinned reports whether either coordinate is pinned.
func (n *Node) Pinned() bool { return n.FX != nil || n.FY != nil }

// Placed reports whether the node has a finite position.
func (n *Node) Placed() bool {
	return !math.IsNaN(n.X) && !math.IsNaN(n.Y)
}

type nodeJSON struct {
	ID    flexID   `json:"id"`
	Group int      `json:"group"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	VX    *float64 `json:"vx,omitempty"`
	VY    *float64 `json:"vy,omitempty"`
	FX    *float64 `json:"fx,omitempty"`
	FY    *float64 `json:"fy,omitempty"`
}

// MarshalJSON writes the node, omitting unplaced coordinates.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{ID: flexID(n.ID), Group: n.Group, FX: n.FX, FY: n.FY}
	if n.Placed() {
		out.X, out.Y = &n.X, &n.Y
		if n.VX != 0 || n.VY != 0 {
			out.VX, out.VY = &n.VX, &n.VY
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a node. Missing x/y leave the node unplaced.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{ID: string(in.ID), Group: in.Group, X: math.NaN(), Y: math.NaN(), FX: in.FX, FY: in.FY}
	if in.X != nil && in.Y != nil {
		n.X, n.Y = *in.X, *in.Y
	}
	if in.VX != nil {
		n.VX = *in.VX
	}
	if in.VY != nil {
		n.VY = *in.VY
	}
	return nil
}

// =============================================================================
// Link
// =============================================================================

// Link connects two nodes by id. Source and Target are nil until the link
// force resolves SourceID and TargetID against the node set.
type Link struct {
	SourceID string
	TargetID string
	Value    float64

	Source *Node
	Target *Node

	// Index is the position of the link in Document.Links.
	Index int
}

type linkJSON struct {
	Source flexID  `json:"source"`
	Target flexID  `json:"target"`
	Value  float64 `json:"value"`
}

// MarshalJSON writes the link with node ids as endpoints.
func (l *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(linkJSON{Source: flexID(l.SourceID), Target: flexID(l.TargetID), Value: l.Value})
}

// UnmarshalJSON reads a link; endpoints stay unresolved.
func (l *Link) UnmarshalJSON(data []byte) error {
	var in linkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*l = Link{SourceID: string(in.Source), TargetID: string(in.Target), Value: in.Value}
	return nil
}

// Resolved reports whether both endpoints point at nodes.
func (l *Link) Resolved() bool { return l.Source != nil && l.Target != nil }

// flexID accepts ids written either as JSON strings or numbers.
// Numeric ids are kept in their shortest decimal form so "3" and 3 match.
type flexID string

func (id flexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("id must be a string or number, got %s", data)
	}
	*id = flexID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
