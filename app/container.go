package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/ghost/config"
	"github.com/soocke/ghost/domain/capture"
	"github.com/soocke/ghost/domain/export"
	"github.com/soocke/ghost/domain/render"
	"github.com/soocke/ghost/ui/model"
	"github.com/soocke/ghost/ui/presenter"
	"github.com/soocke/ghost/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Engine     *render.Engine
	Writer     *export.Writer
	Devices    *model.DeviceModel
	Display    *model.DisplayModel
	Timestamps *model.TimestampModel
	RootView   *view.RootView
	UI         view.UI

	// Presenters
	Control        *presenter.ControlPresenter
	Device         *presenter.DevicePresenter
	Preview        *presenter.PreviewPresenter
	TimestampsPres *presenter.TimestampPresenter
	Status         *presenter.StatusPresenter
	Exports        *presenter.ExportPresenter
	Loop           *presenter.Loop
}

// EngineOptions maps the configuration onto render options.
func EngineOptions(cfg *config.Config) (render.Options, error) {
	opts := render.DefaultOptions()
	if cfg == nil {
		return opts, nil
	}
	interp, err := render.ParseInterpolator(cfg.Interpolation)
	if err != nil {
		return opts, err
	}
	opts.TickRate = cfg.TickHz
	opts.PauseWindow = time.Duration(cfg.PauseWindowMs) * time.Millisecond
	opts.Workers = cfg.Workers
	opts.Interpolator = interp
	opts.CaptureBaseOnAttach = cfg.CaptureBaseOnAttach
	opts.Orientation = render.Orientation{FlipHorizontal: cfg.FlipHorizontal, FlipVertical: cfg.FlipVertical}
	return opts, nil
}

// BuildContainer constructs all components. No Tk widgets are created here;
// the root view is built by the app once the container is ready.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	opts, err := EngineOptions(cfg)
	if err != nil {
		return nil, err
	}
	c.Engine = render.NewEngine(logger, opts)
	if mode, err := render.ParseBlendMode(cfg.BlendMode); err == nil {
		c.Engine.SetRenderState(render.WithBlendMode(mode))
	}

	c.Devices = model.NewDeviceModel(cfg.Sources)
	c.restoreDevice()
	c.Display = &model.DisplayModel{}
	c.Timestamps = model.NewTimestampModel()

	// View
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.UI = c.RootView

	open := func(spec string) (capture.Source, error) {
		return capture.Open(logger, spec, capture.OpenOptions{Width: cfg.Width, Height: cfg.Height, FPS: cfg.FPS})
	}
	c.Exports = presenter.NewExportPresenter(nil, c.UI, c.Display, logger)
	if err := c.ApplyExportSettings(cfg); err != nil {
		return nil, err
	}
	c.Device = presenter.NewDevicePresenter(c.Devices, open, c.Engine, c.UI, logger)
	c.Control = presenter.NewControlPresenter(c.Engine, c.Display, c.UI, c.Exports, c.Device)
	c.Control.OnChange = c.persistRenderState
	c.Device.OnChange = c.persistDevice
	c.Preview = presenter.NewPreviewPresenter(c.Engine, c.Display, c.UI)
	c.TimestampsPres = presenter.NewTimestampPresenter(c.Timestamps, c.Engine, c.UI)
	c.Status = presenter.NewStatusPresenter(c.UI)
	c.Engine.AddListener(c.Status.OnPhase)
	c.Loop = presenter.NewLoop(c.Device, c.Status, c.TimestampsPres, c.Preview, c.Exports, nil)
	return c, nil
}

// ApplyExportSettings (re)creates the export writer from cfg and routes
// engine exports either through the confirmation dialog or straight to disk.
func (c *AppContainer) ApplyExportSettings(cfg *config.Config) error {
	w, err := export.NewWriter(c.Logger, cfg.ExportDir, cfg.ExportFormat, cfg.JPEGQuality)
	if err != nil {
		return fmt.Errorf("export writer: %w", err)
	}
	w.OnSaved(c.Exports.OnSaved)
	c.Writer = w
	c.Exports.SetWriter(w)
	if cfg.ExportConfirm {
		c.Engine.SetExportSink(c.Exports)
	} else {
		c.Engine.SetExportSink(w)
	}
	return nil
}

// persistRenderState copies user-facing render settings back to the config
// so they survive a restart. The file is written on exit.
func (c *AppContainer) persistRenderState(st render.RenderState) {
	c.Config.BlendMode = st.Mode.String()
	c.Config.FlipHorizontal = st.Orientation.FlipHorizontal
	c.Config.FlipVertical = st.Orientation.FlipVertical
}

// restoreDevice selects the device that was active at the last exit. An entry
// no longer in Sources is ignored.
func (c *AppContainer) restoreDevice() {
	if c.Config.Device == "" {
		return
	}
	for i, spec := range c.Devices.Specs() {
		if spec == c.Config.Device {
			c.Devices.Select(i)
			return
		}
	}
}

func (c *AppContainer) persistDevice(spec string) {
	c.Config.Device = spec
}
