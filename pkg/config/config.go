// Package config loads reveal.toml.
//
// Lookup order: an explicit path (the --config flag), ./reveal.toml, then
// $XDG_CONFIG_HOME/reveal/config.toml (~/.config when unset). A missing file
// means defaults; a file with unknown keys is an INVALID_CONFIG error so
// typos are not silently ignored.
//
//	[canvas]
//	width = 400
//	height = 400
//	margin = { top = 10, right = 30, bottom = 30, left = 40 }
//
//	[forces]
//	link_distance = 40
//	charge = -30
//
//	[simulation]
//	tick_interval = "16ms"
//
//	[style]
//	palette = "tableau10"
//	wrap = "shade"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reveal/pkg/cache"
	"github.com/matzehuels/reveal/pkg/errors"
	"github.com/matzehuels/reveal/pkg/force"
	"github.com/matzehuels/reveal/pkg/scale"
	"github.com/matzehuels/reveal/pkg/view"
)

// FileName is the project-local config file name.
const FileName = "reveal.toml"

// Backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"

	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config holds reveal configuration.
type Config struct {
	Canvas     CanvasConfig     `toml:"canvas"`
	Forces     ForcesConfig     `toml:"forces"`
	Simulation SimulationConfig `toml:"simulation"`
	Style      StyleConfig      `toml:"style"`
	Server     ServerConfig     `toml:"server"`
	Cache      CacheConfig      `toml:"cache"`
	Store      StoreConfig      `toml:"store"`
}

// CanvasConfig is the outer canvas size and plot margins.
type CanvasConfig struct {
	Width  float64     `toml:"width"`
	Height float64     `toml:"height"`
	Margin view.Margin `toml:"margin"`
}

// ForcesConfig holds the force parameters.
type ForcesConfig struct {
	LinkDistance   float64 `toml:"link_distance"`
	Charge         float64 `toml:"charge"`
	Theta          float64 `toml:"theta"`
	DistanceMin    float64 `toml:"distance_min"`
	DistanceMax    float64 `toml:"distance_max"` // 0 means unbounded
	CenterStrength float64 `toml:"center_strength"`
}

// SimulationConfig holds the cooling schedule and timing.
type SimulationConfig struct {
	AlphaMin        float64  `toml:"alpha_min"`
	AlphaDecay      float64  `toml:"alpha_decay"`
	VelocityDecay   float64  `toml:"velocity_decay"`
	DragAlphaTarget float64  `toml:"drag_alpha_target"`
	TickInterval    Duration `toml:"tick_interval"`
	Seed            uint64   `toml:"seed"`
	MaxTicks        int      `toml:"max_ticks"`
}

// StyleConfig holds the visual encoding.
type StyleConfig struct {
	Radius      float64 `toml:"radius"`
	LabelOffset float64 `toml:"label_offset"`
	LinkStroke  string  `toml:"link_stroke"`
	LabelFill   string  `toml:"label_fill"`
	Palette     string  `toml:"palette"` // name or comma-separated hex colors
	Wrap        string  `toml:"wrap"`    // "cycle" or "shade"
	Background  string  `toml:"background"`
}

// ServerConfig configures reveal serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // none, file, redis
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// StoreConfig selects the snapshot store backend.
type StoreConfig struct {
	Backend  string `toml:"backend"` // memory, file, mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration matching the built-in view defaults.
func Default() *Config {
	v := view.DefaultOptions()
	return &Config{
		Canvas: CanvasConfig{Width: v.Width, Height: v.Height, Margin: v.Margin},
		Forces: ForcesConfig{
			LinkDistance:   v.LinkDistance,
			Charge:         v.Charge,
			Theta:          v.Theta,
			DistanceMin:    v.DistanceMin,
			CenterStrength: v.CenterStrength,
		},
		Simulation: SimulationConfig{
			AlphaMin:        force.DefaultAlphaMin,
			AlphaDecay:      force.DefaultAlphaDecay,
			VelocityDecay:   force.DefaultVelocityDecay,
			DragAlphaTarget: v.DragAlphaTarget,
			TickInterval:    Duration{force.DefaultInterval},
			MaxTicks:        1000,
		},
		Style: StyleConfig{
			Radius:      v.Radius,
			LabelOffset: v.LabelOffset,
			LinkStroke:  v.LinkStroke,
			LabelFill:   v.LabelFill,
			Palette:     "category10",
			Wrap:        string(scale.WrapCycle),
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Cache:  CacheConfig{Backend: CacheFile, Prefix: "reveal:", TTL: Duration{cache.LayoutTTL}},
		Store:  StoreConfig{Backend: StoreFile, Database: "reveal"},
	}
}

// Dir returns the user config directory for reveal.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reveal")
}

// Find returns the config file to load: explicit if set, otherwise the
// first existing file of the lookup order, or "" if none exists.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range []string{FileName, filepath.Join(Dir(), "config.toml")} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load finds and reads the configuration and returns it with the path it
// came from ("" for defaults). An explicit path that does not exist is a
// FILE_NOT_FOUND error.
func Load(explicit string) (*Config, string, error) {
	path := Find(explicit)
	if path == "" {
		return Default(), "", nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, path, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backends, style values and the resulting view options.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be memory, file or mongo, got %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
	}
	if c.Simulation.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "simulation.max_ticks must not be negative")
	}
	v, err := c.ViewOptions()
	if err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "view options")
	}
	return nil
}

// ViewOptions converts the canvas, forces, simulation and style sections.
func (c *Config) ViewOptions() (view.Options, error) {
	palette, err := scale.ParsePalette(c.Style.Palette)
	if err != nil {
		return view.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "style.palette")
	}
	wrap, err := scale.ParseWrapPolicy(c.Style.Wrap)
	if err != nil {
		return view.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "style.wrap")
	}
	return view.Options{
		Width:           c.Canvas.Width,
		Height:          c.Canvas.Height,
		Margin:          c.Canvas.Margin,
		LinkDistance:    c.Forces.LinkDistance,
		Charge:          c.Forces.Charge,
		Theta:           c.Forces.Theta,
		DistanceMin:     c.Forces.DistanceMin,
		DistanceMax:     c.Forces.DistanceMax,
		CenterStrength:  c.Forces.CenterStrength,
		DragAlphaTarget: c.Simulation.DragAlphaTarget,
		Simulation: force.Options{
			AlphaMin:      c.Simulation.AlphaMin,
			AlphaDecay:    c.Simulation.AlphaDecay,
			VelocityDecay: c.Simulation.VelocityDecay,
			Seed:          c.Simulation.Seed,
		},
		Radius:      c.Style.Radius,
		LabelOffset: c.Style.LabelOffset,
		LinkStroke:  c.Style.LinkStroke,
		LabelFill:   c.Style.LabelFill,
		Palette:     palette,
		Wrap:        wrap,
	}, nil
}

// Save writes cfg as TOML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
