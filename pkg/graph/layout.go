package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// =============================================================================
// Layout - Position Snapshot
// =============================================================================

// Layout is a snapshot of node positions, used for caching settled layouts
// and for saved snapshots. Nodes are keyed by id so a layout can be applied
// to a freshly loaded copy of the same document.
type Layout struct {
	Width     float64    `json:"width" bson:"width"`
	Height    float64    `json:"height" bson:"height"`
	Ticks     int        `json:"ticks,omitempty" bson:"ticks,omitempty"`
	Alpha     float64    `json:"alpha,omitempty" bson:"alpha,omitempty"`
	Positions []Position `json:"positions" bson:"positions"`
}

// Position is one node's coordinates in a [Layout].
type Position struct {
	ID string  `json:"id" bson:"id"`
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
}

// Capture records the current positions of doc's placed nodes.
// Positions are sorted by id for deterministic output.
func Capture(doc *Document, width, height float64) Layout {
	l := Layout{Width: width, Height: height, Positions: make([]Position, 0, len(doc.Nodes))}
	for _, n := range doc.Nodes {
		if !n.Placed() {
			continue
		}
		l.Positions = append(l.Positions, Position{ID: n.ID, X: n.X, Y: n.Y})
	}
	sort.Slice(l.Positions, func(i, j int) bool { return l.Positions[i].ID < l.Positions[j].ID })
	return l
}

// Apply copies the layout's positions onto matching nodes of doc, resetting
// their velocities and releasing any pin. It returns the number of nodes
// updated; ids missing from doc are ignored.
func (l Layout) Apply(doc *Document) int {
	byID := Index(doc.Nodes)
	applied := 0
	for _, p := range l.Positions {
		n, ok := byID[p.ID]
		if !ok || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		n.X, n.Y = p.X, p.Y
		n.VX, n.VY = 0, 0
		n.Unpin()
		applied++
	}
	return applied
}

// MarshalLayout encodes a layout as JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// UnmarshalLayout decodes a layout from JSON.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}
