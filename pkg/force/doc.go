// Package force implements a velocity Verlet force simulation for
// node-link layouts.
//
// A [Simulation] holds a temperature, alpha, that starts at 1 and decays
// toward a target each tick. Forces scale their effect by alpha, so motion
// calms as the layout settles. When alpha drops below the minimum the
// simulation stops and fires [EventEnd]; raising the target and calling
// [Simulation.Restart] reheats it, which is how drag gestures keep the
// layout responsive.
//
// Three forces are provided:
//
//   - [Link] pulls linked nodes toward a rest distance
//   - [ManyBody] repels every pair of nodes (Barnes-Hut approximated)
//   - [Center] keeps the mean position at a fixed point
//
// Typical headless use:
//
//	sim := force.New(doc.Nodes, force.Options{})
//	if err := sim.AddForce("link", force.NewLink(doc.Links, 40)); err != nil {
//	    return err // UNRESOLVED_REFERENCE for a dangling link
//	}
//	sim.AddForce("charge", force.NewManyBody(-30))
//	sim.AddForce("center", force.NewCenter(165, 180))
//	sim.Run(0)
//
// Interactive use wraps the simulation in a [Loop], which ticks on a timer
// and serializes commands from other goroutines.
package force
