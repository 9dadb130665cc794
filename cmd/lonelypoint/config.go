package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/lonelypoint"
	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/grid"
	"github.com/hupe1980/lonelypoint/internal/resource"
	"github.com/hupe1980/lonelypoint/neighbor"
	"github.com/hupe1980/lonelypoint/report"
	"github.com/hupe1980/lonelypoint/selector"
	"github.com/hupe1980/lonelypoint/viewer"
)

// Config is the CLI configuration. It can be loaded from a YAML file with
// --config; flags given on the command line take precedence.
type Config struct {
	Path            string      `yaml:"path"`
	Output          string      `yaml:"output"`
	Tag             string      `yaml:"tag"`
	Resolution      int         `yaml:"resolution"`
	Spacing         float64     `yaml:"spacing"`
	Marker          string      `yaml:"marker"`
	ExtraMarker     string      `yaml:"extra_marker"`
	Engine          string      `yaml:"engine"`
	Periodic        bool        `yaml:"periodic"`
	Workers         int         `yaml:"workers"`
	TieBreak        string      `yaml:"tie_break"`
	TieTolerance    float64     `yaml:"tie_tolerance"`
	Precision       int         `yaml:"precision"`
	DumpCandidates  int         `yaml:"dump_candidates"`
	DumpPath        string      `yaml:"dump_path"`
	ValidateCell    bool        `yaml:"validate_cell"`
	MemoryLimit     int64       `yaml:"memory_limit"`
	MaxQueryWorkers int64       `yaml:"max_query_workers"`
	IOLimit         int64       `yaml:"io_limit"`
	ViewCommand     string      `yaml:"view_command"`
	LogLevel        string      `yaml:"log_level"`
	LogFormat       string      `yaml:"log_format"`
	S3              S3Config    `yaml:"s3"`
	MinIO           MinIOConfig `yaml:"minio"`
}

// S3Config configures s3:// locations.
type S3Config struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// MinIOConfig configures minio:// locations.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
	Region    string `yaml:"region"`
}

// DefaultConfig returns the configuration used without file or flags.
func DefaultConfig() Config {
	return Config{
		Tag:          "lis_",
		Resolution:   grid.DefaultResolution,
		Marker:       lonelypoint.DefaultMarker,
		Engine:       string(neighbor.KindKDTree),
		TieBreak:     selector.EnumerationOrder.String(),
		TieTolerance: selector.DefaultTolerance,
		Precision:    report.DefaultFormat.Precision,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// parseVec3 parses "x,y,z" (commas or whitespace).
func parseVec3(s string) (crystal.Vec3, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != 3 {
		return crystal.Vec3{}, fmt.Errorf("want 3 components, got %d in %q", len(fields), s)
	}
	var v crystal.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return crystal.Vec3{}, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		v[i] = x
	}
	return v, nil
}

func (c *Config) logger(w io.Writer) (*lonelypoint.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.LogFormat) {
	case "text", "":
		return lonelypoint.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return lonelypoint.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}

// resourceController returns a controller for the configured limits, or nil
// when no limit is set.
func (c *Config) resourceController() *resource.Controller {
	if c.MemoryLimit <= 0 && c.MaxQueryWorkers <= 0 && c.IOLimit <= 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   c.MemoryLimit,
		MaxQueryWorkers:    c.MaxQueryWorkers,
		IOLimitBytesPerSec: c.IOLimit,
	})
}

// finderOptions translates the configuration into Finder options. The
// report goes to stdout and logs to stderr.
func (c *Config) finderOptions(stdout, stderr io.Writer, dumpName string) ([]lonelypoint.Option, error) {
	kind, err := neighbor.ParseKind(c.Engine)
	if err != nil {
		return nil, err
	}
	policy, err := selector.ParsePolicy(c.TieBreak)
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(stderr)
	if err != nil {
		return nil, err
	}

	opts := []lonelypoint.Option{
		lonelypoint.WithResolution(c.Resolution),
		lonelypoint.WithSpacing(c.Spacing),
		lonelypoint.WithMarker(c.Marker),
		lonelypoint.WithEngine(kind),
		lonelypoint.WithPeriodic(c.Periodic),
		lonelypoint.WithTieBreak(policy, c.TieTolerance),
		lonelypoint.WithValidateCell(c.ValidateCell),
		lonelypoint.WithReport(stdout, report.Format{Precision: c.Precision, VectorPrecision: c.Precision}),
		lonelypoint.WithLogger(logger),
	}
	if c.Workers > 0 {
		opts = append(opts, lonelypoint.WithWorkers(c.Workers))
	}
	if c.ExtraMarker != "" {
		frac, err := parseVec3(c.ExtraMarker)
		if err != nil {
			return nil, fmt.Errorf("extra marker: %w", err)
		}
		opts = append(opts, lonelypoint.WithExtraMarker(frac))
	}
	if c.DumpCandidates != 0 {
		opts = append(opts, lonelypoint.WithCandidates(c.DumpCandidates, dumpName))
	}
	if ctl := c.resourceController(); ctl != nil {
		opts = append(opts, lonelypoint.WithResourceController(ctl))
	}
	if c.ViewCommand != "" {
		v, err := viewer.NewCommand(c.ViewCommand)
		if err != nil {
			return nil, err
		}
		opts = append(opts, lonelypoint.WithViewer(v))
	}
	return opts, nil
}
