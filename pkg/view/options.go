package view

import (
	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/force"
	"github.com/matzehuels/reveal/pkg/scale"
)

// ContainerID is the id of the page element the canvas is attached to.
const ContainerID = "my_dataviz"

// Margin is the space between the outer canvas and the plot area.
type Margin struct {
	Top    float64 `json:"top" toml:"top"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
	Left   float64 `json:"left" toml:"left"`
}

// Options configures a [View].
type Options struct {
	// Width and Height are the outer canvas size, margins included.
	Width  float64
	Height float64
	Margin Margin

	LinkDistance   float64
	Charge         float64
	Theta          float64
	DistanceMin    float64
	DistanceMax    float64
	CenterStrength float64

	// DragAlphaTarget is the temperature held while any drag is active.
	DragAlphaTarget float64
	Simulation      force.Options

	Radius      float64
	LabelOffset float64
	LinkStroke  string
	LabelFill   string
	Palette     []string
	Wrap        scale.WrapPolicy
}

// DefaultOptions returns a 400x400 canvas with margins 10/30/30/40, link
// distance 40, charge -30 and white links and labels.
func DefaultOptions() Options {
	return Options{
		Width:           400,
		Height:          400,
		Margin:          Margin{Top: 10, Right: 30, Bottom: 30, Left: 40},
		LinkDistance:    force.DefaultLinkDistance,
		Charge:          force.DefaultCharge,
		Theta:           force.DefaultTheta,
		DistanceMin:     force.DefaultDistanceMin,
		CenterStrength:  1,
		DragAlphaTarget: 0.3,
		Radius:          5,
		LabelOffset:     6,
		LinkStroke:      "#ffffff",
		LabelFill:       "#ffffff",
		Palette:         scale.Category10,
		Wrap:            scale.WrapCycle,
	}
}

// InnerWidth is the plot width inside the margins.
func (o Options) InnerWidth() float64 { return o.Width - o.Margin.Left - o.Margin.Right }

// InnerHeight is the plot height inside the margins.
func (o Options) InnerHeight() float64 { return o.Height - o.Margin.Top - o.Margin.Bottom }

// Validate rejects canvases with no plot area and non-positive sizes.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %vx%v", o.Width, o.Height)
	case o.InnerWidth() <= 0 || o.InnerHeight() <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "margins leave no plot area in a %vx%v canvas", o.Width, o.Height)
	case o.Radius < 0:
		return errors.New(errors.ErrCodeInvalidInput, "radius must not be negative")
	case o.DragAlphaTarget < 0 || o.DragAlphaTarget > 1:
		return errors.New(errors.ErrCodeInvalidInput, "drag alpha target must be in [0, 1]")
	}
	return nil
}
