package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Defaults applied by the Get* accessors when a field is omitted.
const (
	DefaultAmplitudeThreshold = 10000
	DefaultSizeThreshold      = 50
	DefaultMaxGap             = 5
	DefaultFootprint          = "convex"
	DefaultConcavity          = 2.0
)

// maxFileSize bounds config files read by LoadRunConfig.
const maxFileSize = 1 * 1024 * 1024 // 1MB

// RunConfig holds the parameters of one clustering run. Every field is
// optional; the Get* methods supply defaults so partial files are safe.
type RunConfig struct {
	// Samples strictly above this amplitude are clustered.
	AmplitudeThreshold *int `json:"amplitude_threshold,omitempty"`
	// Minimum cluster volume, in voxels, that produces features.
	SizeThreshold *int `json:"size_threshold,omitempty"`

	// MaxGap is the adjacency tolerance for every axis unless the per-axis
	// value is set.
	MaxGap *int `json:"max_gap,omitempty"`
	XGap   *int `json:"x_gap,omitempty"`
	YGap   *int `json:"y_gap,omitempty"`
	ZGap   *int `json:"z_gap,omitempty"`

	// BucketSize of 0 derives the edge length from the gaps.
	BucketSize *int `json:"bucket_size,omitempty"`

	// Footprint strategy: "convex" or "concave".
	Footprint         *string  `json:"footprint,omitempty"`
	Concavity         *float64 `json:"concavity,omitempty"`
	SimplifyTolerance *float64 `json:"simplify_tolerance,omitempty"`

	// Workers of 0 uses GOMAXPROCS.
	Workers *int `json:"workers,omitempty"`

	// Layers are the depth bands. Nil means the built-in bands.
	Layers []LayerConfig `json:"layers,omitempty"`
}

// LayerConfig is one depth band as written in a config file.
type LayerConfig struct {
	MinDepth int    `json:"min_depth"`
	MaxDepth int    `json:"max_depth"`
	Label    string `json:"label"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRunConfig returns a RunConfig with all fields unset.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// DefaultRunConfig returns a RunConfig with every scalar field set to its
// default. Layers stay nil so the caller's built-in bands apply.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		AmplitudeThreshold: ptrInt(DefaultAmplitudeThreshold),
		SizeThreshold:      ptrInt(DefaultSizeThreshold),
		MaxGap:             ptrInt(DefaultMaxGap),
		BucketSize:         ptrInt(0),
		Footprint:          ptrString(DefaultFootprint),
		Concavity:          ptrFloat64(DefaultConcavity),
		SimplifyTolerance:  ptrFloat64(0),
		Workers:            ptrInt(0),
	}
}

// LoadRunConfig loads a RunConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.AmplitudeThreshold != nil {
		if v := *c.AmplitudeThreshold; v < math.MinInt16 || v > math.MaxInt16 {
			return fmt.Errorf("amplitude_threshold must fit in int16, got %d", v)
		}
	}

	nonNegative := []struct {
		name string
		v    *int
	}{
		{"size_threshold", c.SizeThreshold},
		{"max_gap", c.MaxGap},
		{"x_gap", c.XGap},
		{"y_gap", c.YGap},
		{"z_gap", c.ZGap},
		{"bucket_size", c.BucketSize},
		{"workers", c.Workers},
	}
	for _, f := range nonNegative {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, *f.v)
		}
	}
	// Gaps, bucket size and depths are grid indices.
	indices := []struct {
		name string
		v    *int
	}{
		{"max_gap", c.MaxGap},
		{"x_gap", c.XGap},
		{"y_gap", c.YGap},
		{"z_gap", c.ZGap},
		{"bucket_size", c.BucketSize},
	}
	for _, f := range indices {
		if f.v != nil && int64(*f.v) > math.MaxUint32 {
			return fmt.Errorf("%s must not exceed %d, got %d", f.name, uint32(math.MaxUint32), *f.v)
		}
	}

	if c.Footprint != nil {
		switch strings.ToLower(*c.Footprint) {
		case "convex", "concave":
		default:
			return fmt.Errorf("footprint must be \"convex\" or \"concave\", got %q", *c.Footprint)
		}
	}
	if c.Concavity != nil && *c.Concavity <= 0 {
		return fmt.Errorf("concavity must be positive, got %f", *c.Concavity)
	}
	if c.SimplifyTolerance != nil && *c.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance must be non-negative, got %f", *c.SimplifyTolerance)
	}

	if c.Layers != nil && len(c.Layers) == 0 {
		return fmt.Errorf("layers must contain at least one band")
	}
	for i, l := range c.Layers {
		if l.Label == "" {
			return fmt.Errorf("layers[%d] has no label", i)
		}
		if l.MinDepth < 0 || l.MaxDepth < 0 {
			return fmt.Errorf("layers[%d] %q has a negative depth", i, l.Label)
		}
		if int64(l.MaxDepth) > math.MaxUint32 {
			return fmt.Errorf("layers[%d] %q has max_depth %d beyond the depth index range", i, l.Label, l.MaxDepth)
		}
		if l.MinDepth > l.MaxDepth {
			return fmt.Errorf("layers[%d] %q has min_depth %d > max_depth %d", i, l.Label, l.MinDepth, l.MaxDepth)
		}
	}

	return nil
}

// GetAmplitudeThreshold returns the amplitude_threshold value or the default.
func (c *RunConfig) GetAmplitudeThreshold() int16 {
	if c.AmplitudeThreshold == nil {
		return DefaultAmplitudeThreshold
	}
	return int16(*c.AmplitudeThreshold)
}

// GetSizeThreshold returns the size_threshold value or the default.
func (c *RunConfig) GetSizeThreshold() int {
	if c.SizeThreshold == nil {
		return DefaultSizeThreshold
	}
	return *c.SizeThreshold
}

// GetMaxGap returns the max_gap value or the default.
func (c *RunConfig) GetMaxGap() uint32 {
	if c.MaxGap == nil {
		return DefaultMaxGap
	}
	return uint32(*c.MaxGap)
}

func (c *RunConfig) axisGap(v *int) uint32 {
	if v == nil {
		return c.GetMaxGap()
	}
	return uint32(*v)
}

// GetXGap returns x_gap, falling back to max_gap.
func (c *RunConfig) GetXGap() uint32 { return c.axisGap(c.XGap) }

// GetYGap returns y_gap, falling back to max_gap.
func (c *RunConfig) GetYGap() uint32 { return c.axisGap(c.YGap) }

// GetZGap returns z_gap, falling back to max_gap.
func (c *RunConfig) GetZGap() uint32 { return c.axisGap(c.ZGap) }

// GetBucketSize returns bucket_size, or 0 meaning derive from the gaps.
func (c *RunConfig) GetBucketSize() uint32 {
	if c.BucketSize == nil {
		return 0
	}
	return uint32(*c.BucketSize)
}

// GetFootprint returns the lower-cased footprint strategy name.
func (c *RunConfig) GetFootprint() string {
	if c.Footprint == nil || *c.Footprint == "" {
		return DefaultFootprint
	}
	return strings.ToLower(*c.Footprint)
}

// GetConcavity returns the concavity value or the default.
func (c *RunConfig) GetConcavity() float64 {
	if c.Concavity == nil {
		return DefaultConcavity
	}
	return *c.Concavity
}

// GetSimplifyTolerance returns the simplify_tolerance value, 0 when unset.
func (c *RunConfig) GetSimplifyTolerance() float64 {
	if c.SimplifyTolerance == nil {
		return 0
	}
	return *c.SimplifyTolerance
}

// GetWorkers returns the workers value, 0 when unset.
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetLayers returns the configured bands, or nil when the built-in bands
// should be used.
func (c *RunConfig) GetLayers() []LayerConfig {
	return c.Layers
}
