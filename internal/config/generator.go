package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anurag-upadhay/oofem/internal/rve"
)

// DefaultConfigPath is the path to the canonical generator defaults file.
const DefaultConfigPath = "config/rvegen.defaults.json"

// Defaults applied by the Get* accessors when a field is absent.
const (
	DefaultMinDensity       = 0.3
	DefaultBoxSize          = 10.0
	DefaultMinRadius        = 0.5
	DefaultMaxRadius        = 1.0
	DefaultForcedDist       = 0.1
	DefaultNDim             = 3
	DefaultMaxMisses        = 1000000
	DefaultProgressInterval = time.Second
)

// GeneratorConfig is the on-disk form of a generation run. Pointer fields
// distinguish "absent" from zero so partial files fall back to defaults.
type GeneratorConfig struct {
	MinDensity *float64 `json:"min_density,omitempty"`
	BoxSize    *float64 `json:"box_size,omitempty"`
	MinRadius  *float64 `json:"min_radius,omitempty"`
	MaxRadius  *float64 `json:"max_radius,omitempty"`
	ForcedDist *float64 `json:"forced_dist,omitempty"`
	NDim       *int     `json:"ndim,omitempty"`
	Seed       *int64   `json:"seed,omitempty"`

	// Sampling budgets; 0 disables a budget.
	MaxMisses   *int `json:"max_misses,omitempty"`
	MaxAttempts *int `json:"max_attempts,omitempty"`

	Index        *string `json:"index,omitempty"` // "grid" or "kdtree"
	StrictImages *bool   `json:"strict_images,omitempty"`

	ProgressInterval *string `json:"progress_interval,omitempty"` // duration string like "1s"; "0s" logs every acceptance
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyGeneratorConfig returns a GeneratorConfig with all fields unset.
func EmptyGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{}
}

// DefaultGeneratorConfig returns a GeneratorConfig with every defaulted
// field populated.
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		MinDensity:       ptrFloat64(DefaultMinDensity),
		BoxSize:          ptrFloat64(DefaultBoxSize),
		MinRadius:        ptrFloat64(DefaultMinRadius),
		MaxRadius:        ptrFloat64(DefaultMaxRadius),
		ForcedDist:       ptrFloat64(DefaultForcedDist),
		NDim:             ptrInt(DefaultNDim),
		MaxMisses:        ptrInt(DefaultMaxMisses),
		Index:            ptrString(string(rve.IndexGrid)),
		ProgressInterval: ptrString(DefaultProgressInterval.String()),
	}
}

// LoadGeneratorConfig loads a GeneratorConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadGeneratorConfig(path string) (*GeneratorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGeneratorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching upwards from the
// current directory. Panics if the file cannot be loaded; intended for tests.
func MustLoadDefaultConfig() *GeneratorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadGeneratorConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the resolved parameters and the progress interval.
func (c *GeneratorConfig) Validate() error {
	if c.ProgressInterval != nil && *c.ProgressInterval != "" {
		d, err := time.ParseDuration(*c.ProgressInterval)
		if err != nil {
			return fmt.Errorf("invalid progress_interval '%s': %w", *c.ProgressInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("progress_interval must be non-negative, got %s", d)
		}
	}
	return c.Params().Validate()
}

// Params resolves the configuration into generator parameters.
func (c *GeneratorConfig) Params() rve.Params {
	return rve.Params{
		MinDensity:   c.GetMinDensity(),
		BoxSize:      c.GetBoxSize(),
		MinRadius:    c.GetMinRadius(),
		MaxRadius:    c.GetMaxRadius(),
		ForcedDist:   c.GetForcedDist(),
		NDim:         c.GetNDim(),
		Seed:         c.GetSeed(),
		MaxMisses:    c.GetMaxMisses(),
		MaxAttempts:  c.GetMaxAttempts(),
		Index:        rve.IndexKind(c.GetIndex()),
		StrictImages: c.GetStrictImages(),
	}
}

// GetMinDensity returns the min_density value or the default.
func (c *GeneratorConfig) GetMinDensity() float64 {
	if c.MinDensity == nil {
		return DefaultMinDensity
	}
	return *c.MinDensity
}

// GetBoxSize returns the box_size value or the default.
func (c *GeneratorConfig) GetBoxSize() float64 {
	if c.BoxSize == nil {
		return DefaultBoxSize
	}
	return *c.BoxSize
}

// GetMinRadius returns the min_radius value or the default.
func (c *GeneratorConfig) GetMinRadius() float64 {
	if c.MinRadius == nil {
		return DefaultMinRadius
	}
	return *c.MinRadius
}

// GetMaxRadius returns the max_radius value or the default.
func (c *GeneratorConfig) GetMaxRadius() float64 {
	if c.MaxRadius == nil {
		return DefaultMaxRadius
	}
	return *c.MaxRadius
}

// GetForcedDist returns the forced_dist value or the default.
func (c *GeneratorConfig) GetForcedDist() float64 {
	if c.ForcedDist == nil {
		return DefaultForcedDist
	}
	return *c.ForcedDist
}

// GetNDim returns the ndim value or the default.
func (c *GeneratorConfig) GetNDim() int {
	if c.NDim == nil {
		return DefaultNDim
	}
	return *c.NDim
}

// GetSeed returns the seed value or 0.
func (c *GeneratorConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetMaxMisses returns the max_misses value or the default.
func (c *GeneratorConfig) GetMaxMisses() int {
	if c.MaxMisses == nil {
		return DefaultMaxMisses
	}
	return *c.MaxMisses
}

// GetMaxAttempts returns the max_attempts value or 0 (unbounded).
func (c *GeneratorConfig) GetMaxAttempts() int {
	if c.MaxAttempts == nil {
		return 0
	}
	return *c.MaxAttempts
}

// GetIndex returns the index value or "grid".
func (c *GeneratorConfig) GetIndex() string {
	if c.Index == nil || *c.Index == "" {
		return string(rve.IndexGrid)
	}
	return *c.Index
}

// GetStrictImages returns the strict_images value or false.
func (c *GeneratorConfig) GetStrictImages() bool {
	if c.StrictImages == nil {
		return false
	}
	return *c.StrictImages
}

// GetProgressInterval parses and returns the ProgressInterval as a time.Duration.
func (c *GeneratorConfig) GetProgressInterval() time.Duration {
	if c.ProgressInterval == nil || *c.ProgressInterval == "" {
		return DefaultProgressInterval
	}
	d, err := time.ParseDuration(*c.ProgressInterval)
	if err != nil {
		return DefaultProgressInterval // default on parse error
	}
	return d
}
