// Package config handles mesh configuration loading, validation and
// conversion into the solver inputs.
package config

// Config holds all mesh generation settings.
type Config struct {
	Domain   DomainConfig    `yaml:"domain"`
	Grading  GradingConfig   `yaml:"grading"`
	Features []FeatureConfig `yaml:"features,omitempty"`
	Blending BlendingConfig  `yaml:"blending"`
	Surface  SurfaceConfig   `yaml:"surface"`
	Patches  PatchConfig     `yaml:"patches"`
	Edges    EdgeConfig      `yaml:"edges"`
	Output   OutputConfig    `yaml:"output"`
	Logging  LoggingConfig   `yaml:"logging"`
}

// DomainConfig describes the meshed box. Dimensions, blocks and cells are
// given per local axis (x, y, z); z is vertical.
type DomainConfig struct {
	Origin     [3]float64 `yaml:"origin"`
	XAxis      [3]float64 `yaml:"x_axis"`
	ZAxis      [3]float64 `yaml:"z_axis"`
	Dimensions [3]float64 `yaml:"dimensions"`
	Blocks     [3]int     `yaml:"blocks"`
	Cells      [3]int     `yaml:"cells"` // Cells per block
}

// GradingConfig holds the ordered region list of each axis. An empty list
// grades the axis uniformly.
type GradingConfig struct {
	X []RegionConfig `yaml:"x,omitempty"`
	Y []RegionConfig `yaml:"y,omitempty"`
	Z []RegionConfig `yaml:"z,omitempty"`
}

// RegionConfig is one grading region.
type RegionConfig struct {
	Width     float64 `yaml:"width,omitempty"`
	Blocks    int     `yaml:"blocks,omitempty"`
	Remainder bool    `yaml:"remainder,omitempty"`
	Mode      string  `yaml:"mode"`
}

// TransitionConfig selects a transition function.
type TransitionConfig struct {
	Kind      string       `yaml:"kind"`
	Steepness float64      `yaml:"steepness,omitempty"`
	Window    float64      `yaml:"window,omitempty"`
	Points    [][2]float64 `yaml:"points,omitempty"`
}

// FeatureConfig describes one terrain feature in local coordinates.
type FeatureConfig struct {
	Name       string           `yaml:"name"`
	Kind       string           `yaml:"kind"`
	Center     [2]float64       `yaml:"center"`
	Radius     float64          `yaml:"radius"`
	Height     float64          `yaml:"height"`
	Step       float64          `yaml:"step,omitempty"`
	CoRadius   float64          `yaml:"co_radius,omitempty"`
	Direction  [2]float64       `yaml:"direction,omitempty"`
	AngleStep  float64          `yaml:"angle_step_deg,omitempty"`
	Policy     string           `yaml:"policy"`
	Transition TransitionConfig `yaml:"transition,omitempty"`
}

// BlendingConfig selects the strategy that joins the sampled surface to
// the flat boundary.
type BlendingConfig struct {
	Strategy   string           `yaml:"strategy"`
	Transition TransitionConfig `yaml:"transition"`
	Start      float64          `yaml:"start,omitempty"`
	End        float64          `yaml:"end,omitempty"`
	Center     [2]float64       `yaml:"center,omitempty"`
	Inner      float64          `yaml:"inner,omitempty"`
	Outer      float64          `yaml:"outer,omitempty"`
}

// SurfaceConfig places an optional sampled elevation grid. Bounds is the
// sampled rectangle (xmin, ymin, xmax, ymax) in local coordinates.
type SurfaceConfig struct {
	File           string     `yaml:"file"`
	Bounds         [4]float64 `yaml:"bounds"`
	ZeroLevel      float64    `yaml:"zero_level"`
	SearchDistance float64    `yaml:"search_distance"`
}

// PatchConfig controls boundary patch assembly.
type PatchConfig struct {
	// Cyclic lists horizontal axes ("x", "y") whose side patches are paired.
	Cyclic []string `yaml:"cyclic,omitempty"`
	// Types overrides the type of named patches (west, east, south, north,
	// ground, sky).
	Types map[string]string `yaml:"types"`
}

// EdgeConfig controls curved edges on the ground-following block edges.
type EdgeConfig struct {
	// SamplesPerCell is the number of polyline segments per cell; 0 keeps
	// straight edges.
	SamplesPerCell int `yaml:"samples_per_cell"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Domain: DomainConfig{
			Origin:     [3]float64{0, 0, 0},
			XAxis:      [3]float64{1, 0, 0},
			ZAxis:      [3]float64{0, 0, 1},
			Dimensions: [3]float64{1000, 1000, 500},
			Blocks:     [3]int{10, 10, 5},
			Cells:      [3]int{4, 4, 4},
		},
		Blending: BlendingConfig{
			Strategy:   "linear",
			Transition: TransitionConfig{Kind: "linear"},
		},
		Patches: PatchConfig{
			Types: map[string]string{
				"ground": "wall",
			},
		},
		Edges: EdgeConfig{
			SamplesPerCell: 4,
		},
		Output: OutputConfig{
			Path: "mesh.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
