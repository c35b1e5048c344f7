package config

import (
	"os"
	"path/filepath"
	"testing"

	"stepwedge/pkg/grid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pattern.Count != 101 || cfg.Pattern.Columns != 10 ||
		cfg.Pattern.Width != 1000 || cfg.Pattern.MaxTone != 65535 {
		t.Errorf("Unexpected default pattern: %+v", cfg.Pattern)
	}
	if cfg.Locator.Strategy != "hough" {
		t.Errorf("Expected the hough strategy by default, got %q", cfg.Locator.Strategy)
	}
	if cfg.Locator.VoteThreshold != 200 || cfg.Locator.SuppressionRadius != 8 {
		t.Errorf("Unexpected default line detection options: %+v", cfg.Locator)
	}
	if cfg.Processing.NumCores < 1 {
		t.Error("Expected at least one core by default")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pattern.Count != 101 {
		t.Errorf("Expected default count 101, got %d", cfg.Pattern.Count)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stepwedge.yaml")

	cfg := DefaultConfig()
	cfg.Pattern.Count = 21
	cfg.Locator.Strategy = "fixed"
	cfg.Sampler.Reversed = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Pattern.Count != 21 {
		t.Errorf("Expected count 21, got %d", loaded.Pattern.Count)
	}
	if loaded.Locator.Strategy != "fixed" {
		t.Errorf("Expected fixed strategy, got %q", loaded.Locator.Strategy)
	}
	if !loaded.Sampler.Reversed {
		t.Error("Expected reversed sampling to survive the round trip")
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("]]]"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestBuildParamsStrategies(t *testing.T) {
	cfg := DefaultConfig()

	params, err := cfg.BuildParams()
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}
	if _, ok := params.Locator.(grid.HoughLocator); !ok {
		t.Errorf("Expected a HoughLocator, got %T", params.Locator)
	}

	cfg.Locator.Strategy = "fixed"
	params, err = cfg.BuildParams()
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}
	if _, ok := params.Locator.(grid.FixedLocator); !ok {
		t.Errorf("Expected a FixedLocator, got %T", params.Locator)
	}

	cfg.Locator.Strategy = "magic"
	if _, err := cfg.BuildParams(); err == nil {
		t.Error("Expected an error for an unknown strategy")
	}
}

func TestBuildParamsValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pattern.Count = 1
	if _, err := cfg.BuildParams(); err == nil {
		t.Error("Expected an error for an invalid pattern")
	}

	cfg = DefaultConfig()
	cfg.Curve.Interpolation = "spline-of-the-week"
	if _, err := cfg.BuildParams(); err == nil {
		t.Error("Expected an error for an unknown interpolation")
	}
}
