// Package config provides configuration management for tabula table operations
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for tabula operations
type Config struct {
	// Parallel Processing Configuration
	ParallelThreshold int  `json:"parallel_threshold" yaml:"parallel_threshold" validate:"gt=0"` // Minimum groups to trigger parallel grouped apply
	WorkerPoolSize    int  `json:"worker_pool_size" yaml:"worker_pool_size" validate:"gte=0"`    // Number of worker goroutines (0 = auto-detect)
	MaxParallelism    int  `json:"max_parallelism" yaml:"max_parallelism" validate:"gt=0"`       // Upper bound on workers for one call
	DisableParallel   bool `json:"disable_parallel" yaml:"disable_parallel"`                     // Run every group sequentially

	// Reshape Configuration
	PivotIDMarker string `json:"pivot_id_marker" yaml:"pivot_id_marker" validate:"required"` // Temporary prefix for id columns while pivoting

	// Sampling Configuration
	DefaultSeed *uint64 `json:"default_seed,omitempty" yaml:"default_seed,omitempty"` // Seed used when a row sample has none (nil = random)

	// Debugging Configuration
	VerboseLogging bool `json:"verbose_logging" yaml:"verbose_logging"` // Enable debug logging from the library
}

// OperationConfig represents per-operation configuration overrides
type OperationConfig struct {
	ForceParallel   bool // Force parallel execution regardless of threshold
	DisableParallel bool // Disable parallel execution
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
	validate     = validator.New()
)

// Default configuration values
const (
	DefaultParallelThreshold = 64
	DefaultMaxParallelism    = 16
	DefaultPivotIDMarker     = "__tabula_column_id__"
)

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect
		MaxParallelism:    DefaultMaxParallelism,
		DisableParallel:   false,
		PivotIDMarker:     DefaultPivotIDMarker,
		VerboseLogging:    false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s must satisfy %s%s, got %v", fe.Field(), fe.Tag(), paramSuffix(fe.Param()), fe.Value())
		}
		return fmt.Errorf("validating configuration: %w", err)
	}
	return nil
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}
	if c.MaxParallelism == 0 {
		c.MaxParallelism = defaults.MaxParallelism
	}
	if c.PivotIDMarker == "" {
		c.PivotIDMarker = defaults.PivotIDMarker
	}

	// Note: Boolean fields are intentionally not set to defaults here
	// This allows distinguishing between explicitly set false and unset values

	return c
}

// Workers returns the number of goroutines a parallel call may use.
func (c Config) Workers() int {
	workers := c.WorkerPoolSize
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if c.MaxParallelism > 0 && workers > c.MaxParallelism {
		workers = c.MaxParallelism
	}
	return workers
}

// ShouldParallelize reports whether groupCount groups should run on the worker pool.
func (c Config) ShouldParallelize(groupCount int, op OperationConfig) bool {
	if op.DisableParallel || c.DisableParallel {
		return false
	}
	if op.ForceParallel {
		return groupCount > 1
	}
	return groupCount >= c.ParallelThreshold && c.Workers() > 1
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data
func LoadFromYAML(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON, YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		config, err = LoadFromJSON(data)
	case ".yaml", ".yml":
		config, err = LoadFromYAML(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("loading config file %s: %w", filename, err)
	}

	return config, nil
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv("TABULA_PARALLEL_THRESHOLD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ParallelThreshold = parsed
		}
	}

	if val := os.Getenv("TABULA_WORKER_POOL_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.WorkerPoolSize = parsed
		}
	}

	if val := os.Getenv("TABULA_MAX_PARALLELISM"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.MaxParallelism = parsed
		}
	}

	if val := os.Getenv("TABULA_DISABLE_PARALLEL"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.DisableParallel = parsed
		}
	}

	if val := os.Getenv("TABULA_PIVOT_ID_MARKER"); val != "" {
		config.PivotIDMarker = val
	}

	if val := os.Getenv("TABULA_DEFAULT_SEED"); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			config.DefaultSeed = &parsed
		}
	}

	if val := os.Getenv("TABULA_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	return config
}
