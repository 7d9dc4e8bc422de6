package view

import (
	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
)

// DragStart begins a drag gesture on the node with the given id. The first
// concurrent gesture reheats the simulation toward the drag alpha target;
// every gesture pins its node where it currently is.
func (v *View) DragStart(id string) error {
	n, err := v.node(id)
	if err != nil {
		return err
	}
	if v.dragging[id] {
		return errors.New(errors.ErrCodeInvalidInput, "node %q is already being dragged", id)
	}
	if v.active == 0 {
		v.sim.SetAlphaTarget(v.opts.DragAlphaTarget)
		v.sim.Restart()
	}
	v.active++
	v.dragging[id] = true
	n.Pin(n.X, n.Y)
	return nil
}

// Drag pins a dragged node at the pointer position (x, y), given in plot
// coordinates.
func (v *View) Drag(id string, x, y float64) error {
	n, err := v.gesture(id)
	if err != nil {
		return err
	}
	n.Pin(x, y)
	return nil
}

// DragEnd finishes a gesture and releases its node. When no gesture
// remains the simulation is allowed to cool again.
func (v *View) DragEnd(id string) error {
	n, err := v.gesture(id)
	if err != nil {
		return err
	}
	delete(v.dragging, id)
	v.active--
	if v.active == 0 {
		v.sim.SetAlphaTarget(0)
	}
	n.Unpin()
	return nil
}

// ActiveDrags returns the number of gestures in progress.
func (v *View) ActiveDrags() int { return v.active }

// Subject returns the node under the pointer at (x, y), searching within
// twice the node radius, or nil.
func (v *View) Subject(x, y float64) *graph.Node {
	return v.sim.Find(x, y, 2*v.opts.Radius)
}

func (v *View) node(id string) (*graph.Node, error) {
	n, ok := v.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node not found: %q", id)
	}
	return n, nil
}

func (v *View) gesture(id string) (*graph.Node, error) {
	n, err := v.node(id)
	if err != nil {
		return nil, err
	}
	if !v.dragging[id] {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no drag in progress for node %q", id)
	}
	return n, nil
}
