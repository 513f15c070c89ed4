package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical visualisation defaults file.
const DefaultConfigPath = "config/featurevis.defaults.json"

// Limits for figure geometry. A 16x16 inch figure at 150 DPI is 2400x2400 px.
const (
	maxDPI          = 1200
	maxFigureInches = 100.0
)

// VisConfig holds the settings for feature snapshot rendering.
// Omitted fields fall back to the defaults returned by the Get* methods.
type VisConfig struct {
	OutputDir      *string  `json:"output_dir,omitempty"`
	DPI            *int     `json:"dpi,omitempty"`
	FigureWidthIn  *float64 `json:"figure_width_in,omitempty"`
	FigureHeightIn *float64 `json:"figure_height_in,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyVisConfig returns a VisConfig with all fields set to nil.
func EmptyVisConfig() *VisConfig {
	return &VisConfig{}
}

// LoadVisConfig loads a VisConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadVisConfig(path string) (*VisConfig, error) {
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

	cfg := EmptyVisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *VisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadVisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *VisConfig) Validate() error {
	if c.OutputDir != nil && *c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty when set")
	}

	if c.DPI != nil {
		if *c.DPI <= 0 || *c.DPI > maxDPI {
			return fmt.Errorf("dpi must be in (0, %d], got %d", maxDPI, *c.DPI)
		}
	}

	if c.FigureWidthIn != nil {
		if *c.FigureWidthIn <= 0 || *c.FigureWidthIn > maxFigureInches {
			return fmt.Errorf("figure_width_in must be in (0, %g], got %g", maxFigureInches, *c.FigureWidthIn)
		}
	}

	if c.FigureHeightIn != nil {
		if *c.FigureHeightIn <= 0 || *c.FigureHeightIn > maxFigureInches {
			return fmt.Errorf("figure_height_in must be in (0, %g], got %g", maxFigureInches, *c.FigureHeightIn)
		}
	}

	return nil
}

// GetOutputDir returns the output_dir value or the default.
func (c *VisConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "visualizations"
	}
	return *c.OutputDir
}

// SetOutputDir overrides output_dir, e.g. from a command-line flag.
func (c *VisConfig) SetOutputDir(dir string) {
	c.OutputDir = ptrString(dir)
}

// GetDPI returns the dpi value or the default.
func (c *VisConfig) GetDPI() int {
	if c.DPI == nil {
		return 150
	}
	return *c.DPI
}

// GetFigureWidthIn returns the figure_width_in value or the default.
func (c *VisConfig) GetFigureWidthIn() float64 {
	if c.FigureWidthIn == nil {
		return 16.0
	}
	return *c.FigureWidthIn
}

// GetFigureHeightIn returns the figure_height_in value or the default.
func (c *VisConfig) GetFigureHeightIn() float64 {
	if c.FigureHeightIn == nil {
		return 16.0
	}
	return *c.FigureHeightIn
}
