package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/reveal/pkg/graph"
)

// DefaultLinkDistance is the rest length of a link.
const DefaultLinkDistance = 40

// Link pulls linked nodes toward a fixed distance apart. Each link's
// strength is 1/min(degree(source), degree(target)), so hubs are pulled
// less than leaves.
type Link struct {
	links    []*graph.Link
	distance float64

	strengths []float64
	bias      []float64
	rng       *rand.Rand
}

// NewLink returns a link force over links with the given rest distance
// (<= 0 means [DefaultLinkDistance]).
func NewLink(links []*graph.Link, distance float64) *Link {
	if distance <= 0 {
		distance = DefaultLinkDistance
	}
	return &Link{links: links, distance: distance}
}

// Links returns the links, resolved once the force is initialized.
func (f *Link) Links() []*graph.Link { return f.links }

// Distance returns the rest distance.
func (f *Link) Distance() float64 { return f.distance }

// Initialize resolves link endpoints by node id. A link naming a missing
// node is an UNRESOLVED_REFERENCE error.
func (f *Link) Initialize(nodes []*graph.Node, rng *rand.Rand) error {
	if err := graph.Resolve(nodes, f.links); err != nil {
		return err
	}
	f.rng = rng

	count := make(map[*graph.Node]int, len(nodes))
	for _, l := range f.links {
		count[l.Source]++
		count[l.Target]++
	}
	f.strengths = make([]float64, len(f.links))
	f.bias = make([]float64, len(f.links))
	for i, l := range f.links {
		cs, ct := float64(count[l.Source]), float64(count[l.Target])
		f.bias[i] = cs / (cs + ct)
		f.strengths[i] = 1 / math.Min(cs, ct)
	}
	return nil
}

// Apply moves velocities so each link approaches its rest distance,
// looking ahead by the current velocity.
func (f *Link) Apply(alpha float64) {
	for i, l := range f.links {
		src, dst := l.Source, l.Target
		x := dst.X + dst.VX - src.X - src.VX
		if x == 0 {
			x = jiggle(f.rng)
		}
		y := dst.Y + dst.VY - src.Y - src.VY
		if y == 0 {
			y = jiggle(f.rng)
		}
		d := math.Sqrt(x*x + y*y)
		d = (d - f.distance) / d * alpha * f.strengths[i]
		x, y = x*d, y*d

		b := f.bias[i]
		dst.VX -= x * b
		dst.VY -= y * b
		src.VX += x * (1 - b)
		src.VY += y * (1 - b)
	}
}
