package config

import "flag"

var (
	flagConfig  = new(string)
	flagDebug   = new(bool)
	flagLogFile = new(string)
	flagOut     = new(string)
	flagSamples = intPtr(-1)
)

// RegisterFlags binds the configuration flags to fs.
func RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(flagConfig, "config", "", "Path to config file")
	fs.BoolVar(flagDebug, "debug", false, "Enable debug logging")
	fs.StringVar(flagLogFile, "log-file", "", "Write logs to this file")
	fs.StringVar(flagOut, "out", "", "Mesh output path (- for stdout)")
	fs.IntVar(flagSamples, "samples-per-cell", -1, "Polyline segments per cell on ground edges")
}

// ParseFlags registers the configuration flags on fs and parses args.
func ParseFlags(fs *flag.FlagSet, args []string) error {
	RegisterFlags(fs)
	return fs.Parse(args)
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagOut != "" {
		cfg.Output.Path = *flagOut
	}
	if *flagSamples >= 0 {
		cfg.Edges.SamplesPerCell = *flagSamples
	}
}

func intPtr(v int) *int {
	return &v
}
