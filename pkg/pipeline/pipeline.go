// Package pipeline runs the headless load → settle → render pipeline for
// reveal.
//
// The CLI render command and the server both use it so a document renders
// the same way everywhere. A run has three stages:
//
//  1. Load: read the node-link document from a file or URL
//  2. Settle: initialize a view and step its simulation until it stops
//  3. Render: write the settled view in the requested formats
//
// Settled layouts and rendered artifacts are cached. Layout keys combine the
// document hash with every option that changes where the simulation comes
// to rest; artifact keys combine the layout hash with the styling options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "require-map.json",
//	    Formats: []string{"svg", "dot"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Stages can also be run separately with [Runner.Load], [Runner.Settle] and
// [Runner.Render].
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reveal/pkg/cache"
	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/graph"
	"github.com/matzehuels/reveal/pkg/scale"
	"github.com/matzehuels/reveal/pkg/view"
)

const (
	// DefaultMaxTicks bounds a headless settle. The default decay stops a
	// simulation after about 300 ticks, so this leaves room for reheats.
	DefaultMaxTicks = 1000

	// DefaultScale is the PNG rasterization scale.
	DefaultScale = 2.0
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Rendering engines.
const (
	// EngineNative draws the view with the built-in SVG writer and
	// rasterizes with rsvg-convert.
	EngineNative = "native"
	// EngineGraphviz exports DOT with pinned positions and renders it with
	// Graphviz neato.
	EngineGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidEngines is the set of supported rendering engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// Options configures a pipeline run.
type Options struct {
	// Source is a document path or http(s) URL. Ignored when Document is set.
	Source   string
	Document *graph.Document

	View view.Options
	// MaxTicks bounds the settle stage.
	MaxTicks int
	// Initial, when set, positions the nodes before settling, e.g. from a
	// saved snapshot. A snapshot that covers every node is rendered as is.
	Initial *graph.Layout

	Formats    []string
	Engine     string
	Scale      float64
	Background string
	NoLabels   bool

	// Refresh skips cache reads; results are still written.
	Refresh bool

	Logger *log.Logger

	validated bool
}

// Result holds the outputs of a run.
type Result struct {
	Document *graph.Document
	// DocumentHash is the content hash of the document as loaded.
	DocumentHash string
	View         *view.View
	Layout       graph.Layout
	Artifacts    map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timing and size information.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	LoadTime   time.Duration
	SettleTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, dot, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that engine is supported.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: native, graphviz)", engine)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates the options.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.View.Width == 0 && o.View.Height == 0 {
		o.View = view.DefaultOptions()
	}
	if o.MaxTicks <= 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if err := o.View.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns the cache key inputs of the settle stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	v := o.View
	return cache.LayoutKeyOpts{
		Width:          v.Width,
		Height:         v.Height,
		LinkDistance:   v.LinkDistance,
		Charge:         v.Charge,
		Theta:          v.Theta,
		DistanceMin:    v.DistanceMin,
		DistanceMax:    v.DistanceMax,
		CenterStrength: v.CenterStrength,
		VelocityDecay:  v.Simulation.VelocityDecay,
		AlphaMin:       v.Simulation.AlphaMin,
		AlphaDecay:     v.Simulation.AlphaDecay,
		MaxTicks:       o.MaxTicks,
		Seed:           v.Simulation.Seed,
	}
}

// ArtifactKeyOpts returns the cache key inputs of one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	v := o.View
	stroke := v.LinkStroke + "|" + v.LabelFill + "|" + o.Background
	if o.NoLabels {
		stroke += "|nolabels"
	}
	k := cache.ArtifactKeyOpts{
		Format:  format + "/" + o.Engine,
		Radius:  v.Radius,
		Palette: strings.Join(v.Palette, ","),
		Wrap:    string(v.Wrap),
		Stroke:  stroke,
	}
	if format == FormatPNG {
		k.Format += "@" + scale.FormatNumber(o.Scale)
	}
	return k
}
