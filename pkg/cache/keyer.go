package cache

// Keyer builds cache keys. Implementations may add scoping (see
// [ScopedKeyer]) but must keep keys deterministic.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// LayoutKey keys a settled layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact of a settled layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change where a simulation settles.
type LayoutKeyOpts struct {
	Width          float64 `json:"w"`
	Height         float64 `json:"h"`
	LinkDistance   float64 `json:"ld"`
	Charge         float64 `json:"ch"`
	Theta          float64 `json:"th"`
	DistanceMin    float64 `json:"dn"`
	DistanceMax    float64 `json:"dx"`
	CenterStrength float64 `json:"cs"`
	VelocityDecay  float64 `json:"vd"`
	AlphaMin       float64 `json:"am"`
	AlphaDecay     float64 `json:"ad"`
	MaxTicks       int     `json:"mt"`
	Seed           uint64  `json:"sd"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format  string  `json:"f"`
	Radius  float64 `json:"r,omitempty"`
	Palette string  `json:"p,omitempty"`
	Wrap    string  `json:"wr,omitempty"`
	Stroke  string  `json:"s,omitempty"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey hashes the document hash together with opts.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey hashes the layout hash together with opts.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
