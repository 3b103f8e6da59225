package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/ghost/config"
	"github.com/soocke/ghost/debug"
	"github.com/soocke/ghost/ui/theme"
	"github.com/soocke/ghost/ui/view"
)

const debugInterval = 5 * time.Second

type app struct {
	c       *AppContainer
	logger  *slog.Logger
	tick    time.Duration
	afterID string
	cancel  context.CancelFunc
	closed  bool
}

// NewApp builds the container and configures the main window.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	c, err := BuildContainer(cfg, logger, cfgPath)
	if err != nil {
		return nil, err
	}
	fps := c.Config.PreviewFPS
	if fps <= 0 {
		fps = 30
	}
	a := &app{c: c, logger: logger, tick: time.Second / time.Duration(fps)}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a, nil
}

// Start builds the UI, starts the render loop and the first device, then
// blocks in the Tk event loop until the window is closed.
func (a *app) Start() {
	c := a.c
	theme.InitStyles()
	c.RootView.Build(view.Handlers{
		OnCycleDevice:   c.Control.CycleDevice,
		OnToggleZoom:    c.Control.ToggleZoom,
		OnFlipH:         c.Control.ToggleFlipHorizontal,
		OnFlipV:         c.Control.ToggleFlipVertical,
		OnToggleInfo:    c.Control.ToggleInfo,
		OnBase:          c.Control.CaptureBase,
		OnExport:        c.Control.Export,
		OnMode:          c.Control.SetMode,
		OnKey:           c.Control.HandleKey,
		OnExportConfirm: c.Exports.Confirm,
		OnExportCancel:  c.Exports.Cancel,
		OnSettings:      a.settingsApplied,
		OnExit:          a.exitHandler,
	})
	c.Control.Sync()

	var ctx context.Context
	ctx, a.cancel = context.WithCancel(context.Background())
	if c.Config.Debug {
		debug.StartGoroutineLogger(ctx, debugInterval, a.logger)
		debug.StartMemLogger(ctx, debugInterval, a.logger)
	}

	c.Engine.Start()
	c.Device.Activate()
	c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()

	App.Wait()
	a.shutdown()
}

func (a *app) settingsApplied(cfg *config.Config) {
	if err := a.c.ApplyExportSettings(cfg); err != nil {
		a.logger.Error("apply export settings", "error", err)
		a.c.UI.Flash(err.Error())
		return
	}
	a.c.UI.Flash("Settings saved")
}

func (a *app) update() {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("ui update panic", "error", r)
			a.scheduleUpdate()
		}
	}()
	a.c.Loop.Tick()
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(a.tick, func() { a.update() })
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.shutdown()
	Destroy(App)
}

// shutdown stops the device and render loop and saves the config. Safe to
// call more than once.
func (a *app) shutdown() {
	a.closed = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	c := a.c
	if c.Device.Active() == nil && !c.Engine.Running() {
		return
	}
	c.Device.Close()
	c.Engine.Stop()
	if c.ConfigPath != "" {
		if err := c.Config.Save(c.ConfigPath); err != nil {
			a.logger.Error("config save failed", "error", err)
		}
	}
}
