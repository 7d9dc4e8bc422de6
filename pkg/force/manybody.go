package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/reveal/pkg/graph"
)

// Many-body defaults.
const (
	DefaultCharge      = -30
	DefaultTheta       = 0.9
	DefaultDistanceMin = 1
)

// ManyBody applies a mutual force between every pair of nodes: negative
// strength repels, positive attracts. Distant groups of nodes are
// approximated by their center of mass using a Barnes-Hut plane.
type ManyBody struct {
	Strength float64
	// Theta is the Barnes-Hut accuracy parameter; smaller is more exact.
	Theta float64
	// DistanceMin bounds the force between very close nodes.
	DistanceMin float64
	// DistanceMax ignores nodes further apart; 0 means no limit.
	DistanceMax float64

	nodes []*graph.Node
	rng   *rand.Rand
}

// NewManyBody returns a many-body force with the given strength
// (0 means [DefaultCharge]).
func NewManyBody(strength float64) *ManyBody {
	if strength == 0 {
		strength = DefaultCharge
	}
	return &ManyBody{Strength: strength, Theta: DefaultTheta, DistanceMin: DefaultDistanceMin}
}

func (f *ManyBody) Initialize(nodes []*graph.Node, rng *rand.Rand) error {
	f.nodes = nodes
	f.rng = rng
	return nil
}

func (f *ManyBody) Apply(alpha float64) {
	if len(f.nodes) < 2 {
		return
	}
	particles := f.separate()
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		f.applyExact(particles, alpha)
		return
	}
	kernel := f.kernel(alpha)
	for _, p := range particles {
		v := plane.ForceOn(p, f.Theta, kernel)
		n := p.(*body).n
		n.VX += v.X
		n.VY += v.Y
	}
}

// applyExact sums every pair directly. It is used when the plane cannot be
// built.
func (f *ManyBody) applyExact(particles []barneshut.Particle2, alpha float64) {
	kernel := f.kernel(alpha)
	for _, p := range particles {
		var sum r2.Vec
		for _, q := range particles {
			if p == q {
				continue
			}
			sum = r2.Add(sum, kernel(p, q, 1, 1, r2.Sub(q.Coord2(), p.Coord2())))
		}
		n := p.(*body).n
		n.VX += sum.X
		n.VY += sum.Y
	}
}

// kernel returns the velocity change on p1 from a mass m2 at offset v.
// The plane also offers each particle to itself; that pair contributes nothing.
func (f *ManyBody) kernel(alpha float64) barneshut.Force2 {
	min2 := f.DistanceMin * f.DistanceMin
	max2 := math.Inf(1)
	if f.DistanceMax > 0 {
		max2 = f.DistanceMax * f.DistanceMax
	}
	return func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p2 != nil && p1 == p2 {
			return r2.Vec{}
		}
		l := v.X*v.X + v.Y*v.Y
		if l >= max2 {
			return r2.Vec{}
		}
		if v.X == 0 {
			v.X = jiggle(f.rng)
			l += v.X * v.X
		}
		if v.Y == 0 {
			v.Y = jiggle(f.rng)
			l += v.Y * v.Y
		}
		if l < min2 {
			l = math.Sqrt(min2 * l)
		}
		return r2.Scale(f.Strength*m2*alpha/l, v)
	}
}

// separate wraps the nodes as particles, nudging exactly coincident nodes
// apart so the plane can subdivide them.
func (f *ManyBody) separate() []barneshut.Particle2 {
	seen := make(map[r2.Vec]bool, len(f.nodes))
	particles := make([]barneshut.Particle2, len(f.nodes))
	for i, n := range f.nodes {
		for seen[r2.Vec{X: n.X, Y: n.Y}] {
			n.X += jiggle(f.rng)
			n.Y += jiggle(f.rng)
		}
		seen[r2.Vec{X: n.X, Y: n.Y}] = true
		particles[i] = &body{n: n}
	}
	return particles
}

// body adapts a node to a unit-mass Barnes-Hut particle.
type body struct{ n *graph.Node }

func (b *body) Coord2() r2.Vec { return r2.Vec{X: b.n.X, Y: b.n.Y} }
func (b *body) Mass() float64  { return 1 }
