// Package config provides configuration loading and management for
// stepwedge. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"stepwedge/pkg/calibration"
	"stepwedge/pkg/curve"
	"stepwedge/pkg/grid"
	"stepwedge/pkg/pattern"
	"stepwedge/pkg/sample"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Pattern describes the printed calibration target.
	Pattern struct {
		// Count is the total number of patches on the target.
		Count int `yaml:"count"`

		// Columns is the number of patches per row.
		Columns int `yaml:"columns"`

		// Width is the nominal rendered width in pixels.
		Width int `yaml:"width"`

		// MaxTone is the full-scale tone value.
		MaxTone int `yaml:"maxTone"`
	} `yaml:"pattern"`

	// Locator selects and tunes the grid-location strategy.
	Locator struct {
		// Strategy is "hough" for detection-based location or "fixed"
		// for scans already cropped to the pattern.
		Strategy string `yaml:"strategy"`

		// CannyLow and CannyHigh are the edge detector thresholds.
		CannyLow  float64 `yaml:"cannyLow"`
		CannyHigh float64 `yaml:"cannyHigh"`

		// VoteThreshold is the minimum Hough accumulator count for a
		// detected line.
		VoteThreshold int `yaml:"voteThreshold"`

		// SuppressionRadius drops weaker lines near a stronger one.
		SuppressionRadius int `yaml:"suppressionRadius"`

		// AngleTolerance is the allowed deviation, in degrees, from
		// horizontal or vertical.
		AngleTolerance int `yaml:"angleTolerance"`
	} `yaml:"locator"`

	// Sampler controls patch sampling and normalization.
	Sampler struct {
		// Margin insets the sampling window on every side of a patch.
		Margin int `yaml:"margin"`

		// Reversed reverses the normalized samples for targets
		// printed dark-to-light.
		Reversed bool `yaml:"reversed"`
	} `yaml:"sampler"`

	// Curve controls the fitted interpolation.
	Curve struct {
		// Interpolation is "linear" or "akima".
		Interpolation string `yaml:"interpolation"`
	} `yaml:"curve"`

	// Processing parameters.
	Processing struct {
		// NumCores specifies how many CPU cores to use for the
		// parallel pixel loops.
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters.
	Output struct {
		// SaveDiagnostics writes the lines overlay, normalized
		// preview, curve plot, and histogram next to the curve.
		SaveDiagnostics bool `yaml:"saveDiagnostics"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values: the
// standard 101-patch target and detection-based grid location.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pattern.Count = 101
	cfg.Pattern.Columns = 10
	cfg.Pattern.Width = 1000
	cfg.Pattern.MaxTone = 65535

	cfg.Locator.Strategy = "hough"
	cfg.Locator.CannyLow = 50
	cfg.Locator.CannyHigh = 100
	cfg.Locator.VoteThreshold = 200
	cfg.Locator.SuppressionRadius = 8
	cfg.Locator.AngleTolerance = 1

	cfg.Sampler.Margin = sample.DefaultMargin
	cfg.Sampler.Reversed = false

	cfg.Curve.Interpolation = string(curve.InterpLinear)

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Output.SaveDiagnostics = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file does
// not exist, it returns the default configuration.
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

// BuildParams resolves the configuration into analyzer parameters,
// validating the pattern and the strategy name.
func (c *Config) BuildParams() (*calibration.Params, error) {
	desc, err := pattern.New(c.Pattern.Count, c.Pattern.Columns, c.Pattern.Width, c.Pattern.MaxTone)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern configuration: %w", err)
	}

	var locator grid.Locator
	switch c.Locator.Strategy {
	case "", "hough":
		locator = grid.HoughLocator{
			Columns:           desc.Columns,
			Rows:              desc.Rows,
			CannyLow:          c.Locator.CannyLow,
			CannyHigh:         c.Locator.CannyHigh,
			VoteThreshold:     c.Locator.VoteThreshold,
			SuppressionRadius: c.Locator.SuppressionRadius,
			AngleTolerance:    c.Locator.AngleTolerance,
		}
	case "fixed":
		locator = grid.FixedLocator{Columns: desc.Columns}
	default:
		return nil, fmt.Errorf("no locator strategy named %q", c.Locator.Strategy)
	}

	interpolation := curve.Interpolation(c.Curve.Interpolation)
	switch interpolation {
	case "", curve.InterpLinear, curve.InterpAkima:
	default:
		return nil, fmt.Errorf("no interpolation named %q", c.Curve.Interpolation)
	}

	return &calibration.Params{
		Pattern:       desc,
		Locator:       locator,
		Margin:        c.Sampler.Margin,
		Reversed:      c.Sampler.Reversed,
		Interpolation: interpolation,
		NumCores:      c.Processing.NumCores,
		Verbose:       c.Output.Verbose,
	}, nil
}
