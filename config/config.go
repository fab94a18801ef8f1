// Package config loads and saves the YAML configuration of the
// cartoonify command and turns it into pipeline options.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/wbrown/cartoonify"
	"github.com/wbrown/cartoonify/imageutil"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Filter parameters of the cartoon effect
	Filters struct {
		MedianKernel        int     `yaml:"medianKernel"`
		ThresholdBlockSize  int     `yaml:"thresholdBlockSize"`
		ThresholdOffset     float64 `yaml:"thresholdOffset"`
		BilateralDiameter   int     `yaml:"bilateralDiameter"`
		BilateralSigmaColor float64 `yaml:"bilateralSigmaColor"`
		BilateralSigmaSpace float64 `yaml:"bilateralSigmaSpace"`
	} `yaml:"filters"`

	// Display thumbnail parameters
	Display struct {
		MaxWidth  int `yaml:"maxWidth"`
		MaxHeight int `yaml:"maxHeight"`

		// Interpolation is "linear", "area" or "nearest"
		Interpolation string `yaml:"interpolation"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// Format is "auto" (from the output extension), "jpeg", "png", ...
		Format string `yaml:"format"`

		JPEGQuality int `yaml:"jpegQuality"`

		// IntermediatesFormat is used when saving all six artifacts
		IntermediatesFormat string `yaml:"intermediatesFormat"`
	} `yaml:"output"`

	// Processing parameters
	Processing struct {
		// Backend names the filter implementation, "go" or "opencv"
		Backend string `yaml:"backend"`

		// Workers is the number of goroutines per filter, 0 for all cores
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Logging parameters
	Logging struct {
		// Level is a zerolog level name: "debug", "info", "warn", ...
		Level string `yaml:"level"`

		// JSON writes raw JSON lines instead of console output
		JSON bool `yaml:"json"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	p := cartoonify.DefaultParams()
	cfg.Filters.MedianKernel = p.MedianKernel
	cfg.Filters.ThresholdBlockSize = p.ThresholdBlockSize
	cfg.Filters.ThresholdOffset = p.ThresholdOffset
	cfg.Filters.BilateralDiameter = p.BilateralDiameter
	cfg.Filters.BilateralSigmaColor = p.BilateralSigmaColor
	cfg.Filters.BilateralSigmaSpace = p.BilateralSigmaSpace

	cfg.Display.MaxWidth = cartoonify.MaxDisplayWidth
	cfg.Display.MaxHeight = cartoonify.MaxDisplayHeight
	cfg.Display.Interpolation = imageutil.InterpolationLinear.String()

	cfg.Output.Format = cartoonify.FormatAuto.String()
	cfg.Output.JPEGQuality = imageutil.DefaultJPEGQuality
	cfg.Output.IntermediatesFormat = cartoonify.FormatPNG.String()

	cfg.Processing.Backend = cartoonify.DefaultBackend
	cfg.Processing.Workers = 0

	cfg.Logging.Level = zerolog.InfoLevel.String()
	cfg.Logging.JSON = false

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
// Keys missing from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Params returns the filter parameters.
func (c *Config) Params() cartoonify.Params {
	return cartoonify.Params{
		MedianKernel:        c.Filters.MedianKernel,
		ThresholdBlockSize:  c.Filters.ThresholdBlockSize,
		ThresholdOffset:     c.Filters.ThresholdOffset,
		BilateralDiameter:   c.Filters.BilateralDiameter,
		BilateralSigmaColor: c.Filters.BilateralSigmaColor,
		BilateralSigmaSpace: c.Filters.BilateralSigmaSpace,
	}
}

// Validate checks every value. The backend is checked by Options since
// the set of registered backends depends on build tags.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Display.MaxWidth < 1 || c.Display.MaxHeight < 1 {
		return fmt.Errorf("display bounds must be positive, got %dx%d", c.Display.MaxWidth, c.Display.MaxHeight)
	}
	if _, err := imageutil.ParseInterpolation(c.Display.Interpolation); err != nil {
		return err
	}
	if _, err := cartoonify.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := cartoonify.ParseFormat(c.Output.IntermediatesFormat); err != nil {
		return err
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be in 1..100, got %d", c.Output.JPEGQuality)
	}
	if c.Processing.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Processing.Workers)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Options converts the configuration into pipeline options.
func (c *Config) Options() ([]cartoonify.PipelineOption, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	interp, err := imageutil.ParseInterpolation(c.Display.Interpolation)
	if err != nil {
		return nil, err
	}
	backend, err := cartoonify.LookupBackend(c.Processing.Backend)
	if err != nil {
		return nil, err
	}

	return []cartoonify.PipelineOption{
		cartoonify.WithParams(c.Params()),
		cartoonify.WithDisplayBounds(c.Display.MaxWidth, c.Display.MaxHeight),
		cartoonify.WithInterpolation(interp),
		cartoonify.WithBackend(backend),
	}, nil
}

// Logger builds the logger described by the Logging section. Console
// output is used unless JSON is set.
func (c *Config) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	if !c.Logging.JSON {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
