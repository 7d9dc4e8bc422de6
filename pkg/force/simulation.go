package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
)

// Default simulation parameters. Alpha decays from 1 to DefaultAlphaMin in
// about 300 ticks.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4

	initialRadius = 10
)

var (
	DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

	initialAngle = math.Pi * (3 - math.Sqrt(5))
)

// Event identifies a simulation event for [Simulation.On].
type Event int

const (
	// EventTick fires after every step while the simulation runs.
	EventTick Event = iota
	// EventEnd fires once when alpha drops below the minimum and ticking stops.
	EventEnd
)

func (e Event) String() string {
	switch e {
	case EventTick:
		return "tick"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Force mutates node velocities (or positions) once per tick.
type Force interface {
	// Initialize binds the force to the simulation's nodes. It is called
	// when the force is added and again whenever the node set changes.
	Initialize(nodes []*graph.Node, rng *rand.Rand) error

	// Apply runs one iteration of the force at the given alpha.
	Apply(alpha float64)
}

// Options configures a [Simulation]. Zero fields take the defaults.
type Options struct {
	AlphaMin   float64
	AlphaDecay float64
	// VelocityDecay is the fraction of velocity lost per tick (friction).
	VelocityDecay float64
	// Seed makes initial jiggle reproducible. Zero uses a fixed seed.
	Seed uint64
}

func (o Options) withDefaults() Options {
	if o.AlphaMin <= 0 {
		o.AlphaMin = DefaultAlphaMin
	}
	if o.AlphaDecay <= 0 {
		o.AlphaDecay = DefaultAlphaDecay
	}
	if o.VelocityDecay <= 0 {
		o.VelocityDecay = DefaultVelocityDecay
	}
	return o
}

type namedForce struct {
	name  string
	force Force
}

// Simulation integrates node positions under a set of named forces.
//
// A Simulation is not safe for concurrent use. Interactive callers drive it
// from a single goroutine through [Loop]; headless callers call [Simulation.Step]
// or [Simulation.Tick] directly.
type Simulation struct {
	nodes  []*graph.Node
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	running bool
	ticks   int
	rng     *rand.Rand

	handlers map[Event][]handler
	nextID   int
}

type handler struct {
	id int
	fn func()
}

// New creates a running simulation over nodes. Nodes without a position are
// placed on a phyllotaxis spiral around the origin; pinned nodes start at
// their pin.
func New(nodes []*graph.Node, opts Options) *Simulation {
	opts = opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = 0x5eed
	}
	s := &Simulation{
		nodes:         nodes,
		alpha:         1,
		alphaMin:      opts.AlphaMin,
		alphaDecay:    opts.AlphaDecay,
		velocityDecay: 1 - opts.VelocityDecay,
		running:       true,
		rng:           rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		handlers:      make(map[Event][]handler),
	}
	s.initializeNodes()
	return s
}

func (s *Simulation) initializeNodes() {
	for i, n := range s.nodes {
		n.Index = i
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
}

// Nodes returns the simulated nodes.
func (s *Simulation) Nodes() []*graph.Node { return s.nodes }

// AddForce initializes f against the nodes and registers it under name,
// replacing any force of the same name. Initialization errors (such as a
// link naming a missing node) are returned and the force is not added.
func (s *Simulation) AddForce(name string, f Force) error {
	if f == nil {
		return errors.New(errors.ErrCodeInvalidInput, "force %q is nil", name)
	}
	if err := f.Initialize(s.nodes, s.rng); err != nil {
		return err
	}
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return nil
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	return nil
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// RemoveForce unregisters a force.
func (s *Simulation) RemoveForce(name string) {
	for i, nf := range s.forces {
		if nf.name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the temperature, clamped to [0, 1].
func (s *Simulation) SetAlpha(a float64) { s.alpha = clamp01(a) }

// AlphaTarget returns the temperature alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget sets the temperature alpha decays toward, clamped to [0, 1].
func (s *Simulation) SetAlphaTarget(a float64) { s.alphaTarget = clamp01(a) }

// AlphaMin returns the temperature below which the simulation stops.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// Ticks returns the number of ticks applied since creation.
func (s *Simulation) Ticks() int { return s.ticks }

// Running reports whether [Simulation.Step] will advance the simulation.
func (s *Simulation) Running() bool { return s.running }

// Restart marks the simulation as running. Alpha is left unchanged; pair it
// with SetAlpha or SetAlphaTarget to reheat.
func (s *Simulation) Restart() { s.running = true }

// Stop halts stepping without firing EventEnd.
func (s *Simulation) Stop() { s.running = false }

// Tick advances the simulation n times without firing events and without
// regard to Running. n < 1 is treated as 1.
func (s *Simulation) Tick(n int) {
	if n < 1 {
		n = 1
	}
	for range n {
		s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
		for _, nf := range s.forces {
			nf.force.Apply(s.alpha)
		}
		for _, node := range s.nodes {
			if node.FX == nil {
				node.VX *= s.velocityDecay
				node.X += node.VX
			} else {
				node.X = *node.FX
				node.VX = 0
			}
			if node.FY == nil {
				node.VY *= s.velocityDecay
				node.Y += node.VY
			} else {
				node.Y = *node.FY
				node.VY = 0
			}
		}
		s.ticks++
	}
}

// Step advances one tick if running and fires EventTick. When alpha falls
// below the minimum the simulation stops and fires EventEnd. It reports
// whether the simulation is still running.
func (s *Simulation) Step() bool {
	if !s.running {
		return false
	}
	s.Tick(1)
	s.emit(EventTick)
	if s.alpha < s.alphaMin {
		s.running = false
		s.emit(EventEnd)
	}
	return s.running
}

// Run steps until the simulation stops or maxTicks steps have run
// (maxTicks <= 0 means no limit). It returns the number of steps taken.
func (s *Simulation) Run(maxTicks int) int {
	steps := 0
	for s.running && (maxTicks <= 0 || steps < maxTicks) {
		s.Step()
		steps++
	}
	return steps
}

// On registers fn for ev and returns a function that removes it.
// Handlers run synchronously on the goroutine that steps the simulation,
// in registration order.
func (s *Simulation) On(ev Event, fn func()) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.handlers[ev] = append(s.handlers[ev], handler{id: id, fn: fn})
	return func() {
		hs := s.handlers[ev]
		for i, h := range hs {
			if h.id == id {
				s.handlers[ev] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

func (s *Simulation) emit(ev Event) {
	for _, h := range s.handlers[ev] {
		h.fn()
	}
}

// Find returns the node closest to (x, y) within radius, or nil.
// A radius <= 0 searches without limit.
func (s *Simulation) Find(x, y, radius float64) *graph.Node {
	limit := math.Inf(1)
	if radius > 0 {
		limit = radius * radius
	}
	var closest *graph.Node
	for _, n := range s.nodes {
		dx, dy := x-n.X, y-n.Y
		if d2 := dx*dx + dy*dy; d2 < limit {
			closest, limit = n, d2
		}
	}
	return closest
}

func clamp01(a float64) float64 {
	return math.Max(0, math.Min(1, a))
}

// jiggle returns a tiny random offset used to separate coincident nodes.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}
