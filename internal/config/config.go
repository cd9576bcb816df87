// Package config merges built-in defaults, GRIBSNAP_* environment variables
// (optionally from a .env file) and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"gribsnap/internal/grid"
	"gribsnap/internal/render"
)

var (
	ErrNoInput         = errors.New("config: no input path")
	ErrUnknownVariable = errors.New("config: unknown variable")
)

// Output is one writer the CLI can run.
type Output string

const (
	SVG     Output = "svg"
	PNG     Output = "png"
	GeoJSON Output = "geojson"
)

// Format names an input reader.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatEsri Format = "esri"
)

// Config is one CLI invocation.
type Config struct {
	Path   string
	Var    string
	List   bool
	Format Format

	Render render.Options

	Outputs    map[Output]bool
	SVGOut     string
	PNGOut     string
	GeoJSONOut string
	OutDir     string
	PNGScale   float64

	Cache   string
	Preview bool
	// Bands is an exported GeoJSON band file to open in the preview.
	Bands string
}

// Env looks up one variable; os.Getenv fits.
type Env func(string) string

// LoadDotEnv reads a .env file into the process environment without
// overriding variables that are already set.
func LoadDotEnv(paths ...string) error {
	return godotenv.Load(paths...)
}

// Load parses args on top of env. It returns flag.ErrHelp for -h.
func Load(args []string, env Env, usage io.Writer) (Config, error) {
	if env == nil {
		env = func(string) string { return "" }
	}
	cfg := Config{
		Render:   render.DefaultOptions(),
		Outputs:  map[Output]bool{PNG: true},
		OutDir:   ".",
		PNGScale: 1,
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("gribsnap", flag.ContinueOnError)
	if usage != nil {
		fs.SetOutput(usage)
	}
	var minS, maxS string
	svg := fs.Bool("svg", cfg.Outputs[SVG], "write an SVG document")
	png := fs.Bool("png", cfg.Outputs[PNG], "write a PNG image")
	gj := fs.Bool("geojson", cfg.Outputs[GeoJSON], "write a GeoJSON FeatureCollection")
	format := fs.String("format", string(cfg.Format), "input format: json or esri (default: by extension)")
	fs.StringVar(&cfg.Path, "path", "", "input message file")
	fs.StringVar(&cfg.Var, "var", "", "message key or variable to render")
	fs.BoolVar(&cfg.List, "list", false, "list message keys and exit")
	fs.StringVar(&minS, "minThreshold", "", "low end of the threshold range (default: field minimum)")
	fs.StringVar(&maxS, "maxThreshold", "", "high end of the threshold range (default: field maximum)")
	fs.IntVar(&cfg.Render.Steps, "steps", cfg.Render.Steps, "number of thresholds")
	fs.IntVar(&cfg.Render.Workers, "workers", cfg.Render.Workers, "parallel band workers (0 = all CPUs)")
	fs.Float64Var(&cfg.Render.Simplify, "simplify", cfg.Render.Simplify, "Douglas-Peucker tolerance in degrees (0 = off)")
	fs.StringVar(&cfg.SVGOut, "svgOut", "", "SVG output path (default <outDir>/<key>.svg)")
	fs.StringVar(&cfg.PNGOut, "pngOut", "", "PNG output path (default <outDir>/<key>.png)")
	fs.StringVar(&cfg.GeoJSONOut, "geojsonOut", "", "GeoJSON output path (default <outDir>/<key>.json)")
	fs.StringVar(&cfg.OutDir, "outDir", cfg.OutDir, "directory for default output paths")
	fs.Float64Var(&cfg.PNGScale, "scale", cfg.PNGScale, "PNG pixels per grid cell")
	fs.StringVar(&cfg.Cache, "cache", cfg.Cache, "render cache DSN (sqlite:<path>, postgres://..., redis://...)")
	fs.BoolVar(&cfg.Preview, "preview", false, "open the terminal preview instead of writing files")
	fs.StringVar(&cfg.Bands, "bands", "", "preview a previously exported GeoJSON band file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if minS != "" {
		v, err := strconv.ParseFloat(minS, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: --minThreshold: %w", err)
		}
		cfg.Render.Min = &v
	}
	if maxS != "" {
		v, err := strconv.ParseFloat(maxS, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: --maxThreshold: %w", err)
		}
		cfg.Render.Max = &v
	}
	cfg.Outputs = map[Output]bool{SVG: *svg, PNG: *png, GeoJSON: *gj}
	cfg.Format = Format(*format)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env Env) error {
	if v := env("GRIBSNAP_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: GRIBSNAP_STEPS: %w", err)
		}
		c.Render.Steps = n
	}
	for _, k := range []struct {
		name string
		dst  **float64
	}{{"GRIBSNAP_MIN", &c.Render.Min}, {"GRIBSNAP_MAX", &c.Render.Max}} {
		v := env(k.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", k.name, err)
		}
		*k.dst = &f
	}
	if v := env("GRIBSNAP_OUTPUTS"); v != "" {
		outs, err := parseOutputs(v)
		if err != nil {
			return err
		}
		c.Outputs = outs
	}
	if v := env("GRIBSNAP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: GRIBSNAP_WORKERS: %w", err)
		}
		c.Render.Workers = n
	}
	if v := env("GRIBSNAP_SIMPLIFY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: GRIBSNAP_SIMPLIFY: %w", err)
		}
		c.Render.Simplify = f
	}
	if v := env("GRIBSNAP_CACHE"); v != "" {
		c.Cache = v
	}
	if v := env("GRIBSNAP_OUT_DIR"); v != "" {
		c.OutDir = v
	}
	return nil
}

func parseOutputs(list string) (map[Output]bool, error) {
	outs := map[Output]bool{}
	for _, part := range strings.Split(list, ",") {
		o := Output(strings.ToLower(strings.TrimSpace(part)))
		switch o {
		case "":
			continue
		case SVG, PNG, GeoJSON:
			outs[o] = true
		default:
			return nil, fmt.Errorf("config: unknown output %q", part)
		}
	}
	return outs, nil
}

// Validate checks everything that must hold before a file is opened.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" && strings.TrimSpace(c.Bands) == "" {
		return ErrNoInput
	}
	switch c.Format {
	case FormatAuto, FormatJSON, FormatEsri:
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.PNGScale <= 0 {
		return fmt.Errorf("config: scale must be positive, got %g", c.PNGScale)
	}
	return c.Render.Validate()
}

// InputFormat resolves FormatAuto from the file extension.
func (c Config) InputFormat() Format {
	if c.Format != FormatAuto {
		return c.Format
	}
	switch strings.ToLower(filepath.Ext(c.Path)) {
	case ".asc", ".grd":
		return FormatEsri
	}
	return FormatJSON
}

// LoadMessages reads the input file with the resolved reader.
func (c Config) LoadMessages() (grid.MessageSet, error) {
	if c.InputFormat() == FormatEsri {
		return grid.LoadEsriASCII(c.Path)
	}
	return grid.LoadMessages(c.Path)
}

// Select picks the record named by Var. An empty Var is accepted when the
// set holds exactly one record.
func (c Config) Select(set grid.MessageSet) (grid.Record, error) {
	key := c.Var
	if key == "" {
		if len(set.Records) == 1 {
			return set.Records[0], nil
		}
		return grid.Record{}, fmt.Errorf("%w: --var is required with %d messages", ErrUnknownVariable, len(set.Records))
	}
	rec, err := set.Lookup(key)
	if err != nil {
		return grid.Record{}, fmt.Errorf("%w: %v", ErrUnknownVariable, err)
	}
	return rec, nil
}

// OutputPath returns the explicit path for o, or <OutDir>/<key>.<ext>.
func (c Config) OutputPath(o Output, key string) string {
	var explicit, ext string
	switch o {
	case SVG:
		explicit, ext = c.SVGOut, ".svg"
	case PNG:
		explicit, ext = c.PNGOut, ".png"
	case GeoJSON:
		explicit, ext = c.GeoJSONOut, ".json"
	}
	if explicit != "" {
		return explicit
	}
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(key)
	return filepath.Join(c.OutDir, name+ext)
}
