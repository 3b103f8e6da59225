package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/ghost/config"
	"github.com/soocke/ghost/domain/render"
	"github.com/soocke/ghost/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const flashDuration = 3 * time.Second

// boundKeys are forwarded to Handlers.OnKey as Tk keysyms.
var boundKeys = []string{"i", "Escape", "h", "v", "space", "Return", "KP_Enter", "m", "d", "s", "c", "z"}

// Handlers are the callbacks invoked on user actions.
type Handlers struct {
	OnCycleDevice   func()
	OnToggleZoom    func()
	OnFlipH         func()
	OnFlipV         func()
	OnToggleInfo    func()
	OnBase          func()
	OnExport        func()
	OnMode          func(render.BlendMode)
	OnKey           func(keysym string) bool
	OnExportConfirm func()
	OnExportCancel  func()
	OnSettings      func(*config.Config)
	OnExit          func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Stamps  Timestamps
	Prev    Preview
	Export  ExportDialog
	Info    InfoDialog
	flashID string

	// Widgets
	deviceBtn *TButtonWidget
	zoomBtn   *TButtonWidget
	flipHBtn  *TButtonWidget
	flipVBtn  *TButtonWidget
	modeBtns  map[render.BlendMode]*TButtonWidget
	StatusLbl *TLabelWidget
	flashLbl  *TLabelWidget
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetMode(render.BlendMode)
	SetOrientation(render.Orientation)
	SetZoom(bool)
	ShowInfo(bool)
	Flash(msg string)
	SetDevice(name string)
	SetStatus(string)
	UpdatePreview(img image.Image, cover bool)
	PreviewReset()
	ShowExport(img image.Image)
	HideExport()
	SetTimestamps(start, current time.Time, elapsed time.Duration, ok bool)
}

var _ UI = (*RootView)(nil)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. Handlers are invoked on user actions.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	call := func(fn func()) func() {
		return func() {
			if fn != nil {
				fn()
			}
		}
	}

	// Row 0: toolbar
	bar := Frame(Background(theme.ColorBg))
	Grid(bar, Row(0), Column(0), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	col := 0
	add := func(w Widget) {
		Grid(w, In(bar), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		col++
	}
	rv.deviceBtn = bar.TButton(Txt("<no device>"), Style(theme.StyleDeviceButton), Command(call(h.OnCycleDevice)))
	add(rv.deviceBtn)
	rv.zoomBtn = bar.TButton(Txt("Contain"), Style(theme.StyleToggleOff), Command(call(h.OnToggleZoom)))
	add(rv.zoomBtn)
	rv.flipHBtn = bar.TButton(Txt("Flip H"), Style(theme.StyleToggleOff), Command(call(h.OnFlipH)))
	add(rv.flipHBtn)
	rv.flipVBtn = bar.TButton(Txt("Flip V"), Style(theme.StyleToggleOff), Command(call(h.OnFlipV)))
	add(rv.flipVBtn)
	add(bar.TButton(Txt("i"), Style(theme.StyleInfoButton), Command(call(h.OnToggleInfo))))
	add(bar.TButton(Txt("= Base"), Style(theme.StyleDeviceButton), Command(call(h.OnBase))))
	rv.modeBtns = make(map[render.BlendMode]*TButtonWidget, 3)
	for _, m := range []render.BlendMode{render.BlendMultiply, render.BlendDifference, render.BlendScreen} {
		m := m
		btn := bar.TButton(Txt(modeLabel(m)), Style(theme.StyleToggleOff), Command(func() {
			if h.OnMode != nil {
				h.OnMode(m)
			}
		}))
		rv.modeBtns[m] = btn
		add(btn)
	}
	add(bar.TButton(Txt("↓ Export"), Style(theme.StyleExportButton), Command(call(h.OnExport))))
	add(bar.TButton(Txt("Exit"), Command(call(h.OnExit))))

	// Row 1: preview
	view := Frame(Background("#000000"))
	Grid(view, Row(1), Column(0), Sticky("nsew"))
	maxW, maxH := 960, 720
	if rv.cfg != nil {
		maxW, maxH = rv.cfg.PreviewMaxW, rv.cfg.PreviewMaxH
	}
	rv.Prev = NewPreview(view, 0, maxW, maxH)

	// Row 2: timestamps, status, flash messages
	foot := Frame(Background(theme.ColorBg))
	Grid(foot, Row(2), Column(0), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.Stamps = NewTimestamps(foot, 0, 0)
	rv.StatusLbl = foot.TLabel(Txt("Waiting for camera"), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLbl, In(foot), Row(0), Column(3), Sticky("w"), Padx("0.4m"))
	rv.flashLbl = foot.TLabel(Txt(""), Style(theme.StyleFlashLabel))
	Grid(rv.flashLbl, In(foot), Row(0), Column(4), Sticky("we"), Padx("0.4m"))
	GridColumnConfigure(foot.Window, 4, Weight(1))
	GridRowConfigure(App, 1, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))

	rv.Export = NewExportDialog(call(h.OnExportConfirm), call(h.OnExportCancel))
	rv.Info = NewInfoDialog(rv.cfg, rv.cfgPath, rv.logger, h.OnSettings, call(h.OnToggleInfo))

	for _, k := range boundKeys {
		k := k
		Bind(App, "<KeyPress-"+k+">", Command(func() {
			if h.OnKey != nil {
				h.OnKey(k)
			}
		}))
	}
}

func modeLabel(m render.BlendMode) string {
	switch m {
	case render.BlendMultiply:
		return "M"
	case render.BlendScreen:
		return "S"
	default:
		return "D"
	}
}

// SetMode highlights the active blend mode.
func (rv *RootView) SetMode(m render.BlendMode) {
	if rv == nil {
		return
	}
	for mode, btn := range rv.modeBtns {
		btn.Configure(Style(theme.ToggleStyle(mode == m)))
	}
}

// SetOrientation highlights the active flips.
func (rv *RootView) SetOrientation(o render.Orientation) {
	if rv == nil || rv.flipHBtn == nil {
		return
	}
	rv.flipHBtn.Configure(Style(theme.ToggleStyle(o.FlipHorizontal)))
	rv.flipVBtn.Configure(Style(theme.ToggleStyle(o.FlipVertical)))
}

// SetZoom updates the zoom button.
func (rv *RootView) SetZoom(cover bool) {
	if rv == nil || rv.zoomBtn == nil {
		return
	}
	txt := "Contain"
	if cover {
		txt = "Cover"
	}
	rv.zoomBtn.Configure(Txt(txt), Style(theme.ToggleStyle(cover)))
}

// ShowInfo opens or closes the info dialog.
func (rv *RootView) ShowInfo(visible bool) {
	if rv != nil && rv.Info != nil {
		rv.Info.Show(visible)
	}
}

// Flash shows a transient message in the footer.
func (rv *RootView) Flash(msg string) {
	if rv == nil || rv.flashLbl == nil {
		return
	}
	if rv.flashID != "" {
		TclAfterCancel(rv.flashID)
	}
	rv.flashLbl.Configure(Txt(msg))
	rv.flashID = TclAfter(flashDuration, func() {
		rv.flashID = ""
		rv.flashLbl.Configure(Txt(""))
	})
}

// SetDevice updates the device button label.
func (rv *RootView) SetDevice(name string) {
	if rv != nil && rv.deviceBtn != nil {
		rv.deviceBtn.Configure(Txt(name))
	}
}

// SetStatus updates the status label text.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLbl != nil {
		rv.StatusLbl.Configure(Txt(text))
	}
}

// UpdatePreview proxies to the preview view.
func (rv *RootView) UpdatePreview(img image.Image, cover bool) {
	if rv != nil && rv.Prev != nil {
		rv.Prev.Update(img, cover)
	}
}

// PreviewReset clears the preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Prev != nil {
		rv.Prev.Reset()
	}
}

// ShowExport opens the export dialog with a preview of the captured frame.
func (rv *RootView) ShowExport(img image.Image) {
	if rv != nil && rv.Export != nil {
		rv.Export.Open(img)
	}
}

// HideExport closes the export dialog.
func (rv *RootView) HideExport() {
	if rv != nil && rv.Export != nil {
		rv.Export.Close()
	}
}

// SetTimestamps proxies to the timestamp labels.
func (rv *RootView) SetTimestamps(start, current time.Time, elapsed time.Duration, ok bool) {
	if rv != nil && rv.Stamps != nil {
		rv.Stamps.Set(start, current, elapsed, ok)
	}
}
