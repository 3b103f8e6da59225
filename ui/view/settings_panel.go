package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/ghost/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SettingsPanel encapsulates the export settings form and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type SettingsPanel interface {
	Build(parent *ToplevelWidget, startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	ApplyChanges()                                           // parses widget text into underlying config and persists
}

type settingsPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	onApply func(*config.Config)
	widgets map[string]*TextWidget // keyed by internal field id
}

// NewSettingsPanel creates the view bound to cfg. onApply runs after the
// config was validated and saved.
func NewSettingsPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApply func(*config.Config)) SettingsPanel {
	return &settingsPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApply: onApply, widgets: make(map[string]*TextWidget)}
}

func (v *settingsPanel) Build(parent *ToplevelWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := parent.Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := parent.Text(Height(1), Width(28))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("exportDir", "Export Directory", c.ExportDir)
	makeRow("exportFormat", "Export Format (png, jpg, ...)", c.ExportFormat)
	makeRow("jpegQuality", "JPEG Quality (1-100)", fmt.Sprintf("%d", c.JPEGQuality))
	makeRow("exportConfirm", "Confirm Exports (true/false)", fmt.Sprintf("%t", c.ExportConfirm))
	applyBtn := parent.Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *settingsPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func (v *settingsPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignString := func(id string, dst *string) {
		if w := v.widgets[id]; w != nil {
			if val := strings.TrimSpace(v.text(w)); val != "" {
				*dst = val
			}
		}
	}
	assignString("exportDir", &cfg.ExportDir)
	assignString("exportFormat", &cfg.ExportFormat)
	if w := v.widgets["jpegQuality"]; w != nil {
		if i, ok := parseIntField(v.text(w)); ok {
			cfg.JPEGQuality = i
		}
	}
	if w := v.widgets["exportConfirm"]; w != nil {
		if b, ok := parseBoolLoose(v.text(w)); ok {
			cfg.ExportConfirm = b
		}
	}
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApply != nil {
		v.onApply(v.cfg)
	}
}

// parsing helpers (unexported)
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
