// terramesh generates terrain-following block meshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/terramesh/internal/config"
	"github.com/Faultbox/terramesh/internal/diagnostics"
	"github.com/Faultbox/terramesh/internal/grading"
	"github.com/Faultbox/terramesh/internal/logger"
	"github.com/Faultbox/terramesh/internal/mesher"
	"github.com/Faultbox/terramesh/internal/terrain"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		cmdBuild(args)
	case "check":
		cmdCheck(args)
	case "grading":
		cmdGrading(args)
	case "profile":
		cmdProfile(args)
	case "plot":
		cmdPlot(args)
	case "version":
		fmt.Println("terramesh", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terramesh - terrain-following block mesh generator

Usage:
  terramesh <command> [options]

Commands:
  build   [-config file] [-out path]    Generate the mesh (-out - writes to stdout)
  check   [-config file]                Validate the configuration
  grading -length L -blocks N [-regions list]   Print block boundaries of one axis
  profile -radius R -height H [-step s] [-n k]  Print a hill profile
  plot    [-config file] [-dir path]    Plot grading and feature profiles as PNG
  version                               Print the version

Examples:
  terramesh build -config site.yaml -out mesh.yaml
  terramesh grading -length 1000 -blocks 10 -regions "200:4:uniform,rest:smoothing"
  terramesh profile -radius 300 -height 40 -n 20`)
}

// setup parses the shared flags, loads the configuration and starts logging.
func setup(fs *flag.FlagSet, args []string) *config.Config {
	if err := config.ParseFlags(fs, args); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Logging.JSON && cfg.Logging.LogFile != "" {
		fileCfg := logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = true
		err = logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true)
	} else {
		err = logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg
}

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m, err := mesher.Build(ctx, cfg)
	if err != nil {
		logger.Error("build failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}

	if cfg.Output.Path == "-" {
		err = m.WriteYAML(os.Stdout)
	} else {
		err = m.Save(cfg.Output.Path)
	}
	if err != nil {
		logger.Error("writing mesh", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("mesh written",
		zap.String("path", cfg.Output.Path),
		zap.String("build", m.BuildID))
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfg := setup(fs, args)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Configuration is invalid:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(os.Stderr, "  %s\n", line)
		}
		logger.Sync()
		os.Exit(1)
	}
	fmt.Println("Configuration OK")
}

func cmdGrading(args []string) {
	fs := flag.NewFlagSet("grading", flag.ExitOnError)
	length := fs.Float64("length", 0, "Axis length")
	blocks := fs.Int("blocks", 0, "Number of blocks")
	spec := fs.String("regions", "", "Region list, e.g. 40:4:uniform,rest:smoothing")
	_ = fs.Parse(args)

	regions, err := grading.ParseRegions(*spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	res, err := grading.Solve(grading.Axis{Length: *length, Blocks: *blocks, Cells: 1}, regions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-6s %14s %14s\n", "BLOCK", "START", "WIDTH")
	fmt.Println(strings.Repeat("-", 36))
	for i, w := range res.Widths() {
		fmt.Printf("%-6d %14.6f %14.6f\n", i, res.Boundaries[i], w)
	}
	fmt.Println(strings.Repeat("-", 36))
	fmt.Printf("%-6s %14.6f\n", "END", res.Boundaries[len(res.Boundaries)-1])
}

func cmdProfile(args []string) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	radius := fs.Float64("radius", 0, "Hill radius")
	height := fs.Float64("height", 0, "Hill height")
	step := fs.Float64("step", 0, "Distance quantisation step (0 = radius/1000)")
	n := fs.Int("n", 10, "Number of samples")
	_ = fs.Parse(args)

	if *n < 1 {
		fmt.Fprintln(os.Stderr, "Error: -n must be at least 1")
		os.Exit(1)
	}
	if *step == 0 {
		*step = *radius / 1000
	}
	p, err := terrain.NewProfile(*radius, *height, *step)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%14s %14s\n", "DISTANCE", "HEIGHT")
	for i := 0; i <= *n; i++ {
		d := *radius * float64(i) / float64(*n)
		fmt.Printf("%14.6f %14.6f\n", d, p.Height(d))
	}
}

func cmdPlot(args []string) {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	dir := fs.String("dir", "plots", "Output directory")
	cfg := setup(fs, args)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}

	var written []string
	for i, name := range []string{"x", "y", "z"} {
		done := logger.Timed("plot grading", zap.String("axis", name))
		regions, err := cfg.Regions(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		res, err := grading.Solve(cfg.Axis(i), regions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path := filepath.Join(*dir, "grading_"+name+".png")
		if err := diagnostics.PlotGrading(res, name, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		done()
		written = append(written, path)
	}

	specs, err := cfg.FeatureSpecs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for i, s := range specs {
		f, err := terrain.NewFeature(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		name := s.Name
		if name == "" {
			name = strconv.Itoa(i)
		}
		path := filepath.Join(*dir, "profile_"+name+".png")
		if err := diagnostics.PlotFeature(f, 200, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		written = append(written, path)
	}

	for _, path := range written {
		fmt.Println(path)
	}
}
