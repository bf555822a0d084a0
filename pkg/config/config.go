// Package config provides configuration management for the chunking engine
package config

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joaoccaldas/rag-sub006/pkg/errors"
	"github.com/joaoccaldas/rag-sub006/pkg/interfaces"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. CHUNKER_MAX_CHUNK_SIZE
const EnvPrefix = "CHUNKER"

// Default chunking limits
const (
	DefaultMaxChunkSize             = 1000
	DefaultMinChunkSize             = 200
	DefaultOverlapSize              = 150
	DefaultVisualProximityThreshold = 100.0
)

var validate = validator.New()

// ChunkingConfig holds the tunable options of the chunking pipeline.
// A pipeline copies its configuration at construction; a loaded config is
// never mutated while a chunking call is in flight.
type ChunkingConfig struct {
	// MaxChunkSize is the upper bound in characters per chunk before a forced split
	MaxChunkSize int `yaml:"max_chunk_size" json:"max_chunk_size" mapstructure:"max_chunk_size" validate:"required,gt=0"`

	// MinChunkSize is the lower bound; also the floor of the sentence-search window
	MinChunkSize int `yaml:"min_chunk_size" json:"min_chunk_size" mapstructure:"min_chunk_size" validate:"required,gt=0,ltefield=MaxChunkSize"`

	// OverlapSize is the number of characters carried into the next chunk
	OverlapSize int `yaml:"overlap_size" json:"overlap_size" mapstructure:"overlap_size" validate:"gte=0,ltfield=MaxChunkSize"`

	// PreservePageBoundaries disallows chunks that span two pages
	PreservePageBoundaries bool `yaml:"preserve_page_boundaries" json:"preserve_page_boundaries" mapstructure:"preserve_page_boundaries"`

	// IncludeVisualContext enables visual element association
	IncludeVisualContext bool `yaml:"include_visual_context" json:"include_visual_context" mapstructure:"include_visual_context"`

	// SemanticBoundaryDetection enables merging of chunks cut mid-thought
	SemanticBoundaryDetection bool `yaml:"semantic_boundary_detection" json:"semantic_boundary_detection" mapstructure:"semantic_boundary_detection"`

	// AdaptiveChunkSizing enables density/readability driven resizing
	AdaptiveChunkSizing bool `yaml:"adaptive_chunk_sizing" json:"adaptive_chunk_sizing" mapstructure:"adaptive_chunk_sizing"`

	// VisualProximityThreshold is the spatial distance cutoff in position units
	VisualProximityThreshold float64 `yaml:"visual_proximity_threshold" json:"visual_proximity_threshold" mapstructure:"visual_proximity_threshold" validate:"gte=0"`

	// LogLevel sets the minimum level of pipeline log output
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultChunkingConfig creates a configuration with default settings
func DefaultChunkingConfig() *ChunkingConfig {
	return &ChunkingConfig{
		MaxChunkSize:              DefaultMaxChunkSize,
		MinChunkSize:              DefaultMinChunkSize,
		OverlapSize:               DefaultOverlapSize,
		PreservePageBoundaries:    true,
		IncludeVisualContext:      true,
		SemanticBoundaryDetection: true,
		AdaptiveChunkSizing:       true,
		VisualProximityThreshold:  DefaultVisualProximityThreshold,
		LogLevel:                  "info",
	}
}

// Validate validates the configuration
func (c *ChunkingConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		el := errors.NewErrorList()
		for _, fe := range verrs {
			el.Add(errors.NewConfigInvalidError(
				fmt.Sprintf("invalid value for %s: failed %s constraint", fe.Field(), fe.Tag())).
				WithDetail("field", fe.Field()).
				WithDetail("constraint", fe.Tag()))
		}
		return el.ToError()
	}
	return errors.NewConfigInvalidError(err.Error())
}

// Clone returns a copy of the configuration
func (c *ChunkingConfig) Clone() *ChunkingConfig {
	clone := *c
	return &clone
}

// FromFile loads configuration from a YAML or JSON file, chosen by extension
func (c *ChunkingConfig) FromFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return c.FromJSONFile(path)
	case ".yaml", ".yml":
		return c.FromYAMLFile(path)
	default:
		return errors.NewInvalidFormatError("config file", "yaml or json")
	}
}

// FromJSONFile loads configuration from a JSON file
func (c *ChunkingConfig) FromJSONFile(path string) error {
	return c.fromFile(path, "json")
}

// FromYAMLFile loads configuration from a YAML file
func (c *ChunkingConfig) FromYAMLFile(path string) error {
	return c.fromFile(path, "yaml")
}

func (c *ChunkingConfig) fromFile(path, format string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.NewConfigNotFoundError(path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(format)

	if err := v.ReadInConfig(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeValidation, errors.ErrCodeConfigError,
			"failed to read config file").WithDetail("config_path", path)
	}

	if err := v.Unmarshal(c); err != nil {
		return errors.WrapError(err, errors.ErrorTypeValidation, errors.ErrCodeConfigError,
			"failed to decode config file").WithDetail("config_path", path)
	}
	return nil
}

// ToJSONFile saves configuration to a JSON file
func (c *ChunkingConfig) ToJSONFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// ToYAMLFile saves configuration to a YAML file
func (c *ChunkingConfig) ToYAMLFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// LoadFromEnv applies CHUNKER_-prefixed environment overrides on top of the
// current values
func (c *ChunkingConfig) LoadFromEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Current values become defaults so unset variables keep them
	v.SetDefault("max_chunk_size", c.MaxChunkSize)
	v.SetDefault("min_chunk_size", c.MinChunkSize)
	v.SetDefault("overlap_size", c.OverlapSize)
	v.SetDefault("preserve_page_boundaries", c.PreservePageBoundaries)
	v.SetDefault("include_visual_context", c.IncludeVisualContext)
	v.SetDefault("semantic_boundary_detection", c.SemanticBoundaryDetection)
	v.SetDefault("adaptive_chunk_sizing", c.AdaptiveChunkSizing)
	v.SetDefault("visual_proximity_threshold", c.VisualProximityThreshold)
	v.SetDefault("log_level", c.LogLevel)

	if err := v.Unmarshal(c); err != nil {
		return errors.WrapError(err, errors.ErrorTypeValidation, errors.ErrCodeConfigError,
			"failed to apply environment overrides")
	}
	return nil
}

// ConfigManager implements the configuration manager interface
type ConfigManager struct {
	config map[string]interface{}
	mu     sync.RWMutex
	viper  *viper.Viper
}

var _ interfaces.ConfigManager = (*ConfigManager)(nil)

// NewConfigManager creates a new configuration manager
func NewConfigManager() interfaces.ConfigManager {
	return &ConfigManager{
		config: make(map[string]interface{}),
		viper:  viper.New(),
	}
}

// Load loads configuration from a file
func (cm *ConfigManager) Load(ctx context.Context, path string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.viper.SetConfigFile(path)

	if err := cm.viper.ReadInConfig(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeValidation, errors.ErrCodeConfigError,
			"failed to read config file").WithDetail("config_path", path)
	}

	cm.config = cm.viper.AllSettings()
	return nil
}

// Get retrieves a configuration value
func (cm *ConfigManager) Get(key string) interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.viper.Get(key)
}

// Set sets a configuration value
func (cm *ConfigManager) Set(key string, value interface{}) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.viper.Set(key, value)
	cm.config[key] = value
	return nil
}

// Save saves configuration to a file
func (cm *ConfigManager) Save(ctx context.Context, path string) error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.viper.WriteConfigAs(path)
}

// Watch watches for configuration changes
func (cm *ConfigManager) Watch(ctx context.Context, callback func(key string, value interface{})) error {
	cm.viper.WatchConfig()
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		cm.mu.Lock()
		defer cm.mu.Unlock()

		cm.config = cm.viper.AllSettings()

		for key, value := range cm.config {
			callback(key, value)
		}
	})

	return nil
}
