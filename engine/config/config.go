// Package config loads the engine settings from TOML.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prism/engine/core"
)

const (
	BackendVulkan   = "vulkan"
	BackendHeadless = "headless"
)

type WindowConfig struct {
	StartPosX int    `toml:"x"`
	StartPosY int    `toml:"y"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
}

type Config struct {
	AppName  string `toml:"app_name"`
	LogLevel string `toml:"log_level"`
	// Debug enables assertion logging for caller contract violations.
	Debug bool `toml:"debug"`
	// Validation enables the graphics API validation layers.
	Validation bool   `toml:"validation"`
	Backend    string `toml:"backend"`

	// ShaderPath holds <template>_vert.spv and <template>_frag.spv for every template.
	ShaderPath   string `toml:"shader_path"`
	WatchShaders bool   `toml:"watch_shaders"`

	// MaxAllocationSize overrides the device limit for single allocations
	// when non-zero. Textures above it are uploaded in chunks.
	MaxAllocationSize uint64 `toml:"max_allocation_size"`
	// MaxAppearances sizes the shared material descriptor pool.
	MaxAppearances uint32 `toml:"max_appearances"`
	// IDPoolCapacity bounds every handle pool. Zero means 2^32-1.
	IDPoolCapacity uint32 `toml:"id_pool_capacity"`

	Window WindowConfig `toml:"window"`
}

// Default returns the configuration used when no file is supplied.
//
//	AppName:        "prism"
//	LogLevel:       "info"
//	Backend:        "vulkan"
//	ShaderPath:     "assets/shaders"
//	MaxAppearances: 1024
//	Window:         1280x720 at (100, 100)
func Default() *Config {
	return &Config{
		AppName:        "prism",
		LogLevel:       "info",
		Backend:        BackendVulkan,
		ShaderPath:     "assets/shaders",
		MaxAppearances: 1024,
		Window: WindowConfig{
			StartPosX: 100,
			StartPosY: 100,
			Width:     1280,
			Height:    720,
		},
	}
}

// Load reads path and overlays it on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("failed to read config file %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		err := fmt.Errorf("failed to parse config: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendVulkan, BackendHeadless:
	default:
		return fmt.Errorf("%w: unknown backend %q", core.ErrInvalidArgument, c.Backend)
	}
	if c.ShaderPath == "" {
		return fmt.Errorf("%w: shader_path must be set", core.ErrInvalidArgument)
	}
	if c.MaxAppearances == 0 {
		return fmt.Errorf("%w: max_appearances must be positive", core.ErrInvalidArgument)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: unknown log level %q", core.ErrInvalidArgument, c.LogLevel)
	}
	return nil
}

// Encode writes the configuration back as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
