package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Config holds runtime configuration for the compositor and the app.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Render loop
	TickHz        float64 `json:"tick_hz"`
	PauseWindowMs int     `json:"pause_window_ms"`
	Workers       int     `json:"workers"`
	Interpolation string  `json:"interpolation"`

	// Initial render state
	BlendMode           string `json:"blend_mode"`
	FlipHorizontal      bool   `json:"flip_horizontal"`
	FlipVertical        bool   `json:"flip_vertical"`
	CaptureBaseOnAttach bool   `json:"capture_base_on_attach"`

	// Sources, cycled in order by the device button
	Sources []string `json:"sources"`
	// Device is the last active entry of Sources.
	Device string  `json:"device,omitempty"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`

	// Export
	ExportDir    string `json:"export_dir"`
	ExportFormat string `json:"export_format"`
	JPEGQuality  int    `json:"jpeg_quality"`

	// ExportConfirm shows each export for confirmation before it is written.
	ExportConfirm bool `json:"export_confirm"`

	// Preview
	PreviewFPS  int `json:"preview_fps"`
	PreviewMaxW int `json:"preview_max_w"`
	PreviewMaxH int `json:"preview_max_h"`
}

// DefaultPath is $XDG_CONFIG_HOME/ghost/config.json. The directory is created
// if needed.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("ghost", "config.json"))
}

// DefaultExportDir is the user's pictures directory, or the working
// directory when none is known.
func DefaultExportDir() string {
	if xdg.UserDirs.Pictures != "" {
		return filepath.Join(xdg.UserDirs.Pictures, "ghost")
	}
	return "."
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:               false,
		TickHz:              60,
		PauseWindowMs:       1000,
		Workers:             0,
		Interpolation:       "bilinear",
		BlendMode:           "difference",
		FlipHorizontal:      true,
		FlipVertical:        false,
		CaptureBaseOnAttach: true,
		Sources:             []string{"camera:/dev/video0", "screen", "pattern"},
		Width:               1280,
		Height:              720,
		FPS:                 30,
		ExportDir:           DefaultExportDir(),
		ExportFormat:        "png",
		JPEGQuality:         92,
		ExportConfirm:       true,
		PreviewFPS:          30,
		PreviewMaxW:         960,
		PreviewMaxH:         720,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.TickHz <= 0 || c.TickHz > 240 {
		c.TickHz = 60
	}
	if c.PauseWindowMs <= 0 {
		c.PauseWindowMs = 1000
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	c.Interpolation = strings.ToLower(strings.TrimSpace(c.Interpolation))
	switch c.Interpolation {
	case "nearest", "bilinear", "catmullrom":
	default:
		c.Interpolation = "bilinear"
	}
	c.BlendMode = strings.ToLower(strings.TrimSpace(c.BlendMode))
	switch c.BlendMode {
	case "multiply", "difference", "screen":
	default:
		c.BlendMode = "difference"
	}
	sources := c.Sources[:0]
	for _, s := range c.Sources {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	c.Sources = sources
	if len(c.Sources) == 0 {
		c.Sources = []string{"pattern"}
	}
	if c.Width < 0 {
		c.Width = 0
	}
	if c.Height < 0 {
		c.Height = 0
	}
	if c.FPS <= 0 || c.FPS > 240 {
		c.FPS = 30
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir()
	}
	c.ExportFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.ExportFormat), "."))
	switch c.ExportFormat {
	case "png", "jpg", "jpeg", "bmp", "tif", "tiff", "gif":
	default:
		c.ExportFormat = "png"
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 92
	}
	if c.PreviewFPS <= 0 || c.PreviewFPS > 120 {
		c.PreviewFPS = 30
	}
	if c.PreviewMaxW <= 0 {
		c.PreviewMaxW = 960
	}
	if c.PreviewMaxH <= 0 {
		c.PreviewMaxH = 720
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
