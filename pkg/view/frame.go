package view

// Frame is a copy of the element geometry after a tick, safe to hand to
// other goroutines.
type Frame struct {
	Tick    int     `json:"tick"`
	Alpha   float64 `json:"alpha"`
	Running bool    `json:"running"`

	// Lines holds x1, y1, x2, y2 per link in document order.
	Lines [][4]float64 `json:"lines"`
	// Nodes holds the group translation per node in document order.
	Nodes [][2]float64 `json:"nodes"`
	// Pinned lists the indexes of pinned nodes.
	Pinned []int `json:"pinned,omitempty"`
}

// Frame returns the current geometry.
func (v *View) Frame() Frame {
	f := Frame{
		Tick:    v.sim.Ticks(),
		Alpha:   v.sim.Alpha(),
		Running: v.sim.Running(),
		Lines:   make([][4]float64, len(v.lines)),
		Nodes:   make([][2]float64, len(v.groups)),
	}
	for i, l := range v.lines {
		f.Lines[i] = [4]float64{l.X1, l.Y1, l.X2, l.Y2}
	}
	for i, g := range v.groups {
		f.Nodes[i] = [2]float64{g.X, g.Y}
		if g.Node.Pinned() {
			f.Pinned = append(f.Pinned, i)
		}
	}
	return f
}

// Subscribe calls fn with a new frame after every tick and once when the
// simulation settles. It returns a function that removes the subscription.
// fn runs on the goroutine stepping the simulation and must not block.
func (v *View) Subscribe(fn func(Frame)) (cancel func()) {
	v.nextID++
	id := v.nextID
	v.subs[id] = fn
	return func() { delete(v.subs, id) }
}

func (v *View) publish() {
	if len(v.subs) == 0 {
		return
	}
	f := v.Frame()
	for _, fn := range v.subs {
		fn(f)
	}
}
