package view

import (
	"log/slog"

	"github.com/soocke/ghost/assets"
	"github.com/soocke/ghost/config"
	"github.com/soocke/ghost/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// InfoDialog shows the about text, keyboard shortcuts and export settings.
type InfoDialog interface {
	Show(visible bool)
}

type infoDialog struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	onApply  func(*config.Config)
	onClose  func()
	win      *ToplevelWidget
	settings SettingsPanel
}

// NewInfoDialog creates the dialog manager. onClose runs when the window is
// closed by the window manager.
func NewInfoDialog(cfg *config.Config, cfgPath string, logger *slog.Logger, onApply func(*config.Config), onClose func()) InfoDialog {
	return &infoDialog{cfg: cfg, cfgPath: cfgPath, logger: logger, onApply: onApply, onClose: onClose}
}

func (v *infoDialog) Show(visible bool) {
	if !visible {
		v.destroy()
		return
	}
	if v.win != nil {
		return
	}
	win := App.Toplevel(Borderwidth(2), Background(theme.ColorSurface))
	win.WmTitle("About ghost")
	v.win = win
	about := win.Label(Txt(assets.AboutText), Justify("left"), Anchor("w"), Foreground(theme.ColorText), Background(theme.ColorSurface))
	Grid(about, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("1m"), Pady("1m"))
	row := 1
	for _, s := range assets.Shortcuts() {
		key := win.Label(Txt(s[0]), Foreground(theme.ColorYellow), Background(theme.ColorSurface), Anchor("e"))
		Grid(key, Row(row), Column(0), Sticky("e"), Padx("1m"))
		desc := win.Label(Txt(s[1]), Foreground(theme.ColorTextMuted), Background(theme.ColorSurface), Anchor("w"))
		Grid(desc, Row(row), Column(1), Sticky("w"))
		row++
	}
	if v.cfg != nil {
		v.settings = NewSettingsPanel(v.cfg, v.cfgPath, v.logger, v.onApply)
		v.settings.Build(win, row)
	}
	Bind(win, "<Escape>", Command(v.close))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.close)
}

func (v *infoDialog) close() {
	if v.onClose != nil {
		v.onClose()
		return
	}
	v.destroy()
}

func (v *infoDialog) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
		v.settings = nil
	}
}
