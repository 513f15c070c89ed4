// Package main renders agent and map feature snapshots to PNG figures.
//
// Snapshots come from JSON frame files (-agents, -map) or from the built-in
// synthetic scene generator (-synthetic). All figures share one sequence
// counter within a run.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/featurevis/internal/config"
	"github.com/banshee-data/featurevis/internal/featurevis"
	"github.com/banshee-data/featurevis/internal/fsutil"
	"github.com/banshee-data/featurevis/internal/version"
)

// Config holds command-line options.
type Config struct {
	ConfigFile  string
	OutputDir   string
	AgentFiles  []string
	MapFiles    []string
	Synthetic   int
	Seed        int64
	Verbose     bool
	ShowVersion bool
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	if cfg.ShowVersion {
		fmt.Println(version.String())
		return
	}

	var diag io.Writer
	if cfg.Verbose {
		diag = os.Stderr
	}
	featurevis.SetLogWriters(os.Stderr, diag, nil)

	paths, err := run(cfg, fsutil.OSFileSystem{})
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	log.Printf("Wrote %d figures", len(paths))
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{}
	var agents, maps string

	fs.StringVar(&cfg.ConfigFile, "config", "", "Path to visualisation config JSON (defaults apply when empty)")
	fs.StringVar(&cfg.OutputDir, "output", "", "Output directory, overrides output_dir from the config")
	fs.StringVar(&agents, "agents", "", "Comma-separated agent frame JSON files")
	fs.StringVar(&maps, "map", "", "Comma-separated map frame JSON files")
	fs.IntVar(&cfg.Synthetic, "synthetic", 0, "Number of synthetic agent+map frame pairs to render")
	fs.Int64Var(&cfg.Seed, "seed", 1, "Seed for synthetic frames")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log every saved figure")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	cfg.AgentFiles = splitList(agents)
	cfg.MapFiles = splitList(maps)

	if cfg.Synthetic < 0 {
		return cfg, fmt.Errorf("-synthetic must be non-negative, got %d", cfg.Synthetic)
	}
	if !cfg.ShowVersion && cfg.Synthetic == 0 && len(cfg.AgentFiles) == 0 && len(cfg.MapFiles) == 0 {
		return cfg, fmt.Errorf("nothing to render: pass -agents, -map or -synthetic")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// run renders every requested frame and returns the written paths in order.
func run(cfg Config, fs fsutil.FileSystem) ([]string, error) {
	visCfg := config.EmptyVisConfig()
	if cfg.ConfigFile != "" {
		loaded, err := config.LoadVisConfig(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		visCfg = loaded
	}
	if cfg.OutputDir != "" {
		visCfg.SetOutputDir(cfg.OutputDir)
	}

	out, err := featurevis.NewOutput(fs, visCfg)
	if err != nil {
		return nil, err
	}
	agents := featurevis.NewAgentRenderer(out)
	maps := featurevis.NewMapRenderer(out)

	var paths []string
	for _, name := range cfg.AgentFiles {
		frame, err := loadFrame(fs, name, featurevis.DecodeAgentFrame)
		if err != nil {
			return paths, err
		}
		p, err := agents.Render(&frame.Snapshot, frame.Window())
		if err != nil {
			return paths, fmt.Errorf("%s: %w", name, err)
		}
		paths = append(paths, p)
	}

	for _, name := range cfg.MapFiles {
		frame, err := loadFrame(fs, name, featurevis.DecodeMapFrame)
		if err != nil {
			return paths, err
		}
		p, err := maps.Render(&frame.Snapshot, frame.Window())
		if err != nil {
			return paths, fmt.Errorf("%s: %w", name, err)
		}
		paths = append(paths, p)
	}

	for i := 0; i < cfg.Synthetic; i++ {
		scene := featurevis.NewSyntheticScene(cfg.Seed + int64(i))
		p, err := agents.Render(scene.Agents(), scene.Window())
		if err != nil {
			return paths, fmt.Errorf("synthetic frame %d: %w", i, err)
		}
		paths = append(paths, p)

		p, err = maps.Render(scene.Map(), scene.Window())
		if err != nil {
			return paths, fmt.Errorf("synthetic frame %d: %w", i, err)
		}
		paths = append(paths, p)
	}

	return paths, nil
}

func loadFrame[T any](fs fsutil.FileSystem, name string, decode func(io.Reader) (*T, error)) (*T, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame: %w", err)
	}
	defer f.Close()

	frame, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return frame, nil
}
