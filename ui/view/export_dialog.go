package view

import (
	"fmt"
	"image"

	"github.com/soocke/ghost/ui/images"
	"github.com/soocke/ghost/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

const (
	exportPreviewW = 480
	exportPreviewH = 360
)

// ExportDialog previews a captured frame and asks whether to save it.
type ExportDialog interface {
	Open(preview image.Image)
	Close()
}

type exportDialog struct {
	onConfirm func()
	onCancel  func()
	win       *ToplevelWidget
	photo     *Img
}

// NewExportDialog creates the dialog manager. The callbacks run on the Tk thread.
func NewExportDialog(onConfirm, onCancel func()) ExportDialog {
	return &exportDialog{onConfirm: onConfirm, onCancel: onCancel}
}

func (v *exportDialog) Open(preview image.Image) {
	v.Close()
	if preview == nil {
		return
	}
	win := App.Toplevel(Borderwidth(2), Background(theme.ColorSurface))
	win.WmTitle("Export")
	v.win = win
	b := preview.Bounds()
	v.photo = NewPhoto(Data(images.EncodePNG(images.Contain(preview, exportPreviewW, exportPreviewH))))
	img := win.Label(Image(v.photo), Borderwidth(0))
	Grid(img, Row(0), Column(0), Columnspan(2), Padx("1m"), Pady("1m"))
	info := win.Label(Txt(fmt.Sprintf("%dx%d", b.Dx(), b.Dy())), Foreground(theme.ColorTextMuted), Background(theme.ColorSurface))
	Grid(info, Row(1), Column(0), Columnspan(2), Sticky("we"))
	cancel := win.TButton(Txt("Cancel [Esc]"), Style(theme.StyleToggleOff), Command(v.cancel))
	Grid(cancel, Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	confirm := win.TButton(Txt("Download [Enter]"), Style(theme.StyleExportButton), Command(v.confirm))
	Grid(confirm, Row(2), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.cancel))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.cancel)
	WmAttributes(win.Window, "-topmost", 1)
}

func (v *exportDialog) confirm() {
	if v.onConfirm != nil {
		v.onConfirm()
	}
}

func (v *exportDialog) cancel() {
	if v.onCancel != nil {
		v.onCancel()
	}
}

// Close destroys the dialog. The presenter calls it after either outcome.
func (v *exportDialog) Close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
	if v.photo != nil {
		v.photo.Delete()
		v.photo = nil
	}
}
