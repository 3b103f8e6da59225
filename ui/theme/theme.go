package theme

// Centralized theming for the ghost UI. The palette follows the color coding
// of the controls: green for the device and base capture, blue for render
// toggles, purple for export and yellow for info.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg        = "#0a0a0a" // app background
	ColorSurface   = "#171717" // toolbar, dialogs
	ColorBorder    = "#404040"
	ColorGreen     = "#22c55e"
	ColorBlue      = "#3b82f6"
	ColorBlueDim   = "#1e3a8a"
	ColorPurple    = "#a855f7"
	ColorYellow    = "#eab308"
	ColorText      = "#f5f5f5"
	ColorTextMuted = "#a3a3a3"
)

// style names used with Style("green.TButton") etc.
const (
	StyleDeviceButton = "green.TButton"
	StyleToggleOn     = "blue.TButton"
	StyleToggleOff    = "dim.TButton"
	StyleExportButton = "purple.TButton"
	StyleInfoButton   = "yellow.TButton"
	StyleClockLabel   = "clock.TLabel"
	StyleStatusLabel  = "status.TLabel"
	StyleFlashLabel   = "flash.TLabel"
)

// ToggleStyle returns the button style for an on/off control.
func ToggleStyle(on bool) string {
	if on {
		return StyleToggleOn
	}
	return StyleToggleOff
}

// InitStyles activates the base theme and configures the semantic styles.
func InitStyles() {
	_ = ActivateTheme("azure dark") // baseline metrics
	App.Configure(Background(ColorBg))

	button := func(name, bg, fg string) {
		StyleConfigure(name,
			Background(bg),
			Foreground(fg),
			Padding("4p 3p"),
			Borderwidth(1),
			Relief("ridge"),
		)
	}
	button(StyleDeviceButton, ColorGreen, ColorBg)
	button(StyleToggleOn, ColorBlue, "white")
	button(StyleToggleOff, ColorBlueDim, ColorTextMuted)
	button(StyleExportButton, ColorPurple, "white")
	button(StyleInfoButton, ColorYellow, ColorBg)

	StyleConfigure(StyleClockLabel,
		Foreground(ColorText),
		Background(ColorSurface),
		Padding("4p 2p"),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground(ColorBg),
		Background(ColorGreen),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleFlashLabel,
		Foreground(ColorTextMuted),
		Background(ColorBg),
		Padding("2p 1p"),
	)
}
