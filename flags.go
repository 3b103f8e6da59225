package main

import (
	"flag"
	"strings"

	"github.com/soocke/ghost/config"
)

// cliOptions holds command-line overrides. Only flags that were set on the
// command line are applied over the loaded config.
type cliOptions struct {
	configPath string
	debug      bool
	sources    string
	mode       string
	flipH      bool
	flipV      bool
	exportDir  string
	format     string
	width      int
	height     int
	set        map[string]bool
}

func parseFlags(args []string) (*cliOptions, error) {
	o := &cliOptions{set: map[string]bool{}}
	defPath, err := config.DefaultPath()
	if err != nil {
		defPath = "ghost.json"
	}
	fs := flag.NewFlagSet("ghost", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", defPath, "Path to the JSON config file")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging and runtime metrics")
	fs.StringVar(&o.sources, "sources", "", "Comma-separated device list, e.g. camera:/dev/video0,screen,pattern")
	fs.StringVar(&o.mode, "mode", "", "Blend mode: multiply, difference, screen")
	fs.BoolVar(&o.flipH, "flip-h", true, "Mirror the feed horizontally")
	fs.BoolVar(&o.flipV, "flip-v", false, "Mirror the feed vertically")
	fs.StringVar(&o.exportDir, "export-dir", "", "Directory for exported frames")
	fs.StringVar(&o.format, "format", "", "Export format: png, jpg, bmp, tiff, gif")
	fs.IntVar(&o.width, "width", 0, "Requested capture width")
	fs.IntVar(&o.height, "height", 0, "Requested capture height")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

func (o *cliOptions) apply(cfg *config.Config) {
	if o.set["debug"] {
		cfg.Debug = o.debug
	}
	if o.set["sources"] {
		cfg.Sources = strings.Split(o.sources, ",")
	}
	if o.set["mode"] {
		cfg.BlendMode = o.mode
	}
	if o.set["flip-h"] {
		cfg.FlipHorizontal = o.flipH
	}
	if o.set["flip-v"] {
		cfg.FlipVertical = o.flipV
	}
	if o.set["export-dir"] {
		cfg.ExportDir = o.exportDir
	}
	if o.set["format"] {
		cfg.ExportFormat = o.format
	}
	if o.set["width"] {
		cfg.Width = o.width
	}
	if o.set["height"] {
		cfg.Height = o.height
	}
}
