package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/terramesh/internal/grading"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Domain.Dimensions != [3]float64{1000, 1000, 500} {
		t.Errorf("expected dimensions [1000 1000 500], got %v", cfg.Domain.Dimensions)
	}
	if cfg.Domain.Blocks != [3]int{10, 10, 5} {
		t.Errorf("expected blocks [10 10 5], got %v", cfg.Domain.Blocks)
	}
	if cfg.Domain.ZAxis != [3]float64{0, 0, 1} {
		t.Errorf("expected vertical z axis, got %v", cfg.Domain.ZAxis)
	}
	if cfg.Blending.Strategy != "linear" {
		t.Errorf("expected linear blending, got %s", cfg.Blending.Strategy)
	}
	if cfg.Edges.SamplesPerCell != 4 {
		t.Errorf("expected 4 samples per cell, got %d", cfg.Edges.SamplesPerCell)
	}
	if cfg.Output.Path != "mesh.yaml" {
		t.Errorf("expected output mesh.yaml, got %s", cfg.Output.Path)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
domain:
  origin: [100, 200, 5]
  dimensions: [100, 30, 50]
  blocks: [10, 3, 5]
  cells: [2, 2, 3]

grading:
  x:
    - {width: 40, blocks: 4, mode: uniform}
    - {remainder: true, mode: smoothing}

features:
  - name: knoll
    kind: oval
    center: [50, 15]
    radius: 20
    co_radius: 10
    direction: [1, 1]
    height: 8
    policy: max

blending:
  strategy: distance
  start: 5
  transition:
    kind: arctan
    steepness: 3
    window: 0.8

patches:
  cyclic: [y]

edges:
  samples_per_cell: 2

logging:
  level: "debug"
  log_file: "build.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Domain.Origin != [3]float64{100, 200, 5} {
		t.Errorf("expected origin [100 200 5], got %v", cfg.Domain.Origin)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Domain.XAxis != [3]float64{1, 0, 0} {
		t.Errorf("expected default x axis, got %v", cfg.Domain.XAxis)
	}
	want := []RegionConfig{
		{Width: 40, Blocks: 4, Mode: "uniform"},
		{Remainder: true, Mode: "smoothing"},
	}
	if diff := cmp.Diff(want, cfg.Grading.X); diff != "" {
		t.Errorf("grading.x mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.Features) != 1 || cfg.Features[0].CoRadius != 10 {
		t.Errorf("unexpected features: %+v", cfg.Features)
	}
	if cfg.Blending.Transition.Window != 0.8 {
		t.Errorf("expected window 0.8, got %v", cfg.Blending.Transition.Window)
	}
	if cfg.Edges.SamplesPerCell != 2 {
		t.Errorf("expected 2 samples per cell, got %d", cfg.Edges.SamplesPerCell)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "build.log" {
		t.Errorf("expected log file 'build.log', got %s", cfg.Logging.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	tests := map[string]string{
		"syntax": `
domain:
  blocks: not a list
  invalid syntax here
`,
		"unknown key": `
domain:
  blokcs: [1, 1, 1]
`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(tmpDir, name+".yaml")
			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			err := loadFromFile(Default(), configPath)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/terramesh.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("domain:\n  blocks: [2, 2, 2]\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "log file flag",
			setup: func() {
				*flagLogFile = "/tmp/terramesh.log"
			},
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/terramesh.log" {
					t.Errorf("expected log file /tmp/terramesh.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagLogFile = ""
			},
		},
		{
			name: "out flag",
			setup: func() {
				*flagOut = "-"
			},
			verify: func(cfg *Config) {
				if cfg.Output.Path != "-" {
					t.Errorf("expected stdout output, got %s", cfg.Output.Path)
				}
			},
			teardown: func() {
				*flagOut = ""
			},
		},
		{
			name: "samples flag",
			setup: func() {
				*flagSamples = 0
			},
			verify: func(cfg *Config) {
				if cfg.Edges.SamplesPerCell != 0 {
					t.Errorf("expected straight edges, got %d samples", cfg.Edges.SamplesPerCell)
				}
			},
			teardown: func() {
				*flagSamples = -1
			},
		},
		{
			name:  "no flags",
			setup: func() {},
			verify: func(cfg *Config) {
				if diff := cmp.Diff(Default(), cfg); diff != "" {
					t.Errorf("config changed without flags (-want +got):\n%s", diff)
				}
			},
			teardown: func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "mesh.yaml")

	yamlContent := `
output:
  path: from-file.yaml
logging:
  level: warn
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagOut = "from-flag.yaml"
	defer func() {
		*flagConfig = ""
		*flagOut = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Output.Path != "from-flag.yaml" {
		t.Errorf("expected output from flag, got %s", cfg.Output.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn from file, got %s", cfg.Logging.Level)
	}
}

func TestParseFlags(t *testing.T) {
	fs := newTestFlagSet()
	defer resetFlags()

	if err := ParseFlags(fs, []string{"-config", "a.yaml", "-debug", "-samples-per-cell", "3"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if ConfigPath() != "a.yaml" {
		t.Errorf("expected config path a.yaml, got %s", ConfigPath())
	}
	cfg := Default()
	applyFlags(cfg)
	if cfg.Edges.SamplesPerCell != 3 || cfg.Logging.Level != "debug" {
		t.Errorf("flags not applied: %+v %+v", cfg.Edges, cfg.Logging)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Grading.Z = []RegionConfig{{Width: 100, Blocks: 2, Mode: "uniform"}, {Remainder: true, Mode: "smoothing"}}
	cfg.Features = []FeatureConfig{{Name: "hill", Radius: 50, Height: 10, Center: [2]float64{500, 500}}}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("saved config differs (-want +got):\n%s", diff)
	}
}

func TestSaveTo_KeepsUnsetListsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if strings.Contains(string(data), "[]") {
		t.Errorf("unset lists written as empty sequences:\n%s", data)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Grading.X != nil || loaded.Grading.Y != nil || loaded.Patches.Cyclic != nil {
		t.Errorf("expected nil lists, got x=%#v y=%#v cyclic=%#v", loaded.Grading.X, loaded.Grading.Y, loaded.Patches.Cyclic)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("saved config differs (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero dimension", func(c *Config) { c.Domain.Dimensions[1] = 0 }, "domain.dimensions.y"},
		{"no blocks", func(c *Config) { c.Domain.Blocks[2] = 0 }, "domain.blocks.z"},
		{"parallel axes", func(c *Config) { c.Domain.XAxis = [3]float64{0, 0, 2} }, "domain.x_axis"},
		{"bad mode", func(c *Config) { c.Grading.X = []RegionConfig{{Remainder: true, Mode: "cubic"}} }, "grading.x"},
		{"regions short of length", func(c *Config) {
			c.Grading.Y = []RegionConfig{{Width: 300, Blocks: 3}, {Width: 300, Blocks: 7}}
		}, "grading.y"},
		{"remainder not last", func(c *Config) {
			c.Grading.X = []RegionConfig{{Remainder: true}, {Width: 300, Blocks: 3}}
		}, "grading.x"},
		{"feature radius", func(c *Config) { c.Features = []FeatureConfig{{Name: "h", Height: 5}} }, "features[0]"},
		{"feature policy", func(c *Config) {
			c.Features = []FeatureConfig{{Name: "h", Radius: 5, Height: 5, Policy: "stack"}}
		}, "features[0]"},
		{"blending kind", func(c *Config) { c.Blending.Strategy = "cubic" }, "blending"},
		{"sample outside domain", func(c *Config) {
			c.Surface.File = "terrain.asc"
			c.Surface.Bounds = [4]float64{500, 500, 1200, 900}
		}, "surface.bounds"},
		{"cyclic z", func(c *Config) { c.Patches.Cyclic = []string{"z"} }, "patches.cyclic"},
		{"unknown patch", func(c *Config) { c.Patches.Types = map[string]string{"inlet": "patch"} }, "patches.types"},
		{"negative samples", func(c *Config) { c.Edges.SamplesPerCell = -2 }, "edges.samples_per_cell"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected a FieldError, got %T", err)
			}
			if fe.Field != tt.field {
				t.Errorf("expected field %s, got %s (%v)", tt.field, fe.Field, err)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Edges.SamplesPerCell = -1
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, field := range []string{"edges.samples_per_cell", "logging.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected %s in %q", field, err)
		}
	}
}

func TestRegions(t *testing.T) {
	cfg := Default()

	got, err := cfg.Regions(0)
	if err != nil {
		t.Fatalf("Regions failed: %v", err)
	}
	want := []grading.Region{{Remainder: true, Mode: grading.Uniform}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("default regions mismatch (-want +got):\n%s", diff)
	}

	cfg.Grading.Z = []RegionConfig{{Width: 100, Blocks: 1, Mode: "uniform"}, {Remainder: true, Mode: "smoothing"}}
	got, err = cfg.Regions(2)
	if err != nil {
		t.Fatalf("Regions failed: %v", err)
	}
	if len(got) != 2 || got[1].Mode != grading.Smoothing || !got[1].Remainder {
		t.Errorf("unexpected z regions: %+v", got)
	}
}

func TestFeatureSpecs(t *testing.T) {
	cfg := Default()
	cfg.Features = []FeatureConfig{{
		Name: "ridge", Kind: "oval", Radius: 80, CoRadius: 20, Height: 15,
		Direction: [2]float64{0, 1}, AngleStep: 5, Policy: "hill",
		Transition: TransitionConfig{Kind: "arctan", Steepness: 2, Window: 1},
	}}

	specs, err := cfg.FeatureSpecs()
	if err != nil {
		t.Fatalf("FeatureSpecs failed: %v", err)
	}
	s := specs[0]
	if s.Direction.Y != 1 || s.CoRadius != 20 {
		t.Errorf("unexpected spec: %+v", s)
	}
	if diff := s.AngleStep - 5*3.141592653589793/180; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("expected angle step in radians, got %v", s.AngleStep)
	}
}
