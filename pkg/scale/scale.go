// Package scale maps data values to visual values: node groups to colors
// and link values to stroke widths.
package scale

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/reveal/pkg/errors"
)

// Category10 is the ten-color categorical palette used for node groups.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Tableau10 is an alternative categorical palette.
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// WrapPolicy decides the color of keys beyond the palette length.
type WrapPolicy string

const (
	// WrapCycle reuses palette colors in order: key n gets color n mod len.
	WrapCycle WrapPolicy = "cycle"
	// WrapShade reuses the hue but blends it lighter on every pass.
	WrapShade WrapPolicy = "shade"
)

// ParseWrapPolicy parses a policy name; "" means [WrapCycle].
func ParseWrapPolicy(s string) (WrapPolicy, error) {
	switch WrapPolicy(strings.ToLower(s)) {
	case "", WrapCycle:
		return WrapCycle, nil
	case WrapShade:
		return WrapShade, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown wrap policy %q (want cycle or shade)", s)
}

// ParsePalette resolves a palette name ("category10", "tableau10") or a
// comma-separated list of hex colors. "" means [Category10].
func ParsePalette(s string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "category10":
		return Category10, nil
	case "tableau10":
		return Tableau10, nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		c, err := colorful.Hex(part)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "palette color %q", part)
		}
		out = append(out, c.Hex())
	}
	return out, nil
}

// Ordinal assigns palette colors to keys in first-seen order, like an
// ordinal scale with an implicit domain. It is safe for concurrent use.
type Ordinal[K comparable] struct {
	palette []string
	wrap    WrapPolicy

	mu     sync.Mutex
	index  map[K]int
	domain []K
}

// NewOrdinal returns a scale over palette; an empty palette means
// [Category10].
func NewOrdinal[K comparable](palette []string, wrap WrapPolicy) *Ordinal[K] {
	if len(palette) == 0 {
		palette = Category10
	}
	if wrap == "" {
		wrap = WrapCycle
	}
	return &Ordinal[K]{palette: palette, wrap: wrap, index: make(map[K]int)}
}

// Color returns the color for key, extending the domain on first use.
func (o *Ordinal[K]) Color(key K) string {
	o.mu.Lock()
	i, ok := o.index[key]
	if !ok {
		i = len(o.domain)
		o.index[key] = i
		o.domain = append(o.domain, key)
	}
	o.mu.Unlock()
	return o.at(i)
}

// Domain returns the keys seen so far in first-seen order.
func (o *Ordinal[K]) Domain() []K {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]K(nil), o.domain...)
}

func (o *Ordinal[K]) at(i int) string {
	base := o.palette[i%len(o.palette)]
	pass := i / len(o.palette)
	if o.wrap != WrapShade || pass == 0 {
		return base
	}
	c, err := colorful.Hex(base)
	if err != nil {
		return base
	}
	white := colorful.Color{R: 1, G: 1, B: 1}
	return c.BlendLab(white, shadeAmount(pass)).Clamped().Hex()
}

// shadeAmount is the blend toward white for the given pass (0.3, 0.51,
// 0.657 ...); it approaches but never reaches 1.
func shadeAmount(pass int) float64 {
	return 1 - math.Pow(0.7, float64(pass))
}

// Sqrt maps a link value to a stroke width. Negative values map to 0.
func Sqrt(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Sqrt(v)
}

// FormatNumber formats an attribute value with up to six decimals and no
// trailing zeros.
func FormatNumber(f float64) string {
	s := fmt.Sprintf("%.6f", f)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
