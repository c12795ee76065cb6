package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/editor"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/render"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/transform"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Editor EditorConfig `json:"editor" toml:"editor"`
	Cover  CoverConfig  `json:"cover" toml:"cover"`
	Output OutputConfig `json:"output" toml:"output"`
}

// EditorConfig holds configuration for interactive edit sessions
type EditorConfig struct {
	MinScale         float64 `json:"min_scale" toml:"min_scale"`
	MaxScale         float64 `json:"max_scale" toml:"max_scale"`
	ZoomStep         float64 `json:"zoom_step" toml:"zoom_step"`
	DevicePixelRatio float64 `json:"device_pixel_ratio" toml:"device_pixel_ratio"`
	FrameColor       string  `json:"frame_color" toml:"frame_color"`
	FrameWidth       float64 `json:"frame_width" toml:"frame_width"`
	LivePreview      bool    `json:"live_preview" toml:"live_preview"`
	MaxSurfacePixels int     `json:"max_surface_pixels" toml:"max_surface_pixels"`
	Quality          float64 `json:"quality" toml:"quality"`
}

// CoverConfig holds configuration for unattended cover crops
type CoverConfig struct {
	Width   int     `json:"width" toml:"width"`
	Height  int     `json:"height" toml:"height"`
	Quality float64 `json:"quality" toml:"quality"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format" toml:"default_format"`
	OutputDir     string `json:"output_dir" toml:"output_dir"`
	Prefix        string `json:"prefix" toml:"prefix"`
	Suffix        string `json:"suffix" toml:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	limits := transform.DefaultLimits()
	frame := render.DefaultFrameStyle()
	return &Config{
		Editor: EditorConfig{
			MinScale:         limits.MinScale,
			MaxScale:         limits.MaxScale,
			ZoomStep:         limits.ZoomStep,
			DevicePixelRatio: 1,
			FrameColor:       frame.Color,
			FrameWidth:       frame.Width,
			LivePreview:      false,
			MaxSurfacePixels: render.DefaultMaxPixels,
			Quality:          editor.DefaultQuality,
		},
		Cover: CoverConfig{
			Width:   800,
			Height:  1200,
			Quality: editor.DefaultQuality,
		},
		Output: OutputConfig{
			DefaultFormat: "jpg",
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_card",
		},
	}
}

// LoadFromFile loads configuration from a JSON or TOML file. Keys missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isTOML(filename) {
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a file, as TOML when the name ends in
// .toml and JSON otherwise
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal(isTOML(filename))
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal encodes the configuration as indented JSON, or TOML if asTOML is set.
func (c *Config) Marshal(asTOML bool) ([]byte, error) {
	if asTOML {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return []byte(sb.String()), nil
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Limits().Validate(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}

	if c.Editor.DevicePixelRatio <= 0 {
		return fmt.Errorf("editor.device_pixel_ratio must be positive")
	}

	if c.Editor.FrameWidth < 0 {
		return fmt.Errorf("editor.frame_width must not be negative")
	}

	if c.Editor.MaxSurfacePixels < 1 {
		return fmt.Errorf("editor.max_surface_pixels must be positive")
	}

	if c.Editor.Quality < 0 || c.Editor.Quality > 1 {
		return fmt.Errorf("editor.quality must be between 0 and 1")
	}

	if c.Cover.Width < 1 || c.Cover.Height < 1 {
		return fmt.Errorf("cover.width and cover.height must be positive")
	}

	if c.Cover.Quality < 0 || c.Cover.Quality > 1 {
		return fmt.Errorf("cover.quality must be between 0 and 1")
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.default_format must be one of jpg, png, webp")
	}

	return nil
}

// Limits returns the zoom limits of the editor section.
func (c *Config) Limits() transform.Limits {
	return transform.Limits{
		MinScale: c.Editor.MinScale,
		MaxScale: c.Editor.MaxScale,
		ZoomStep: c.Editor.ZoomStep,
	}
}

// EditorConfig converts the editor section into session options.
func (c *Config) EditorConfig() editor.Config {
	cfg := editor.DefaultConfig()
	cfg.Limits = c.Limits()
	cfg.DevicePixelRatio = c.Editor.DevicePixelRatio
	cfg.MaxSurfacePixels = c.Editor.MaxSurfacePixels
	cfg.Frame = render.FrameStyle{Color: c.Editor.FrameColor, Width: c.Editor.FrameWidth}
	cfg.LivePreview = c.Editor.LivePreview
	cfg.Format = types.JPEG
	return cfg
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "cardcrop", "config.json")
}

func isTOML(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}
