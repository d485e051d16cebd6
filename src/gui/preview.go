package gui

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// PreviewTitle is the title of the eye preview window.
const PreviewTitle = "VR Dimension ~Sixx"

// Preview is the borderless eye view. It satisfies the event loop's Display
// interface; frames are handed to the fyne goroutine with fyne.Do.
type Preview struct {
	app fyne.App

	// OnStop runs on the UI goroutine when the user closes the preview or
	// presses Q.
	OnStop func()

	win     fyne.Window
	img     *canvas.Image
	size    image.Point
	visible bool
}

func NewPreview(app fyne.App) *Preview {
	return &Preview{app: app}
}

func (p *Preview) ShowFrame(img *image.RGBA) {
	fyne.Do(func() { p.show(img) })
}

func (p *Preview) HideFrame() {
	fyne.Do(p.hide)
}

func (p *Preview) show(img *image.RGBA) {
	if img == nil {
		return
	}
	if p.win == nil {
		p.create()
	}
	if sz := img.Bounds().Size(); sz != p.size {
		p.size = sz
		fs := fyne.NewSize(float32(sz.X), float32(sz.Y))
		p.img.SetMinSize(fs)
		p.win.Resize(fs)
		log.Printf("Preview resized to %dx%d", sz.X, sz.Y)
	}
	p.img.Image = img
	p.img.Refresh()
	if !p.visible {
		p.win.Show()
		p.visible = true
	}
}

func (p *Preview) hide() {
	if p.win == nil || !p.visible {
		return
	}
	p.win.Hide()
	p.visible = false
}

func (p *Preview) create() {
	p.img = canvas.NewImageFromImage(nil)
	p.img.FillMode = canvas.ImageFillContain
	p.img.ScaleMode = canvas.ImageScaleFastest

	p.win = p.app.NewWindow(PreviewTitle)
	p.win.SetPadded(false)
	p.win.SetContent(p.img)
	p.win.SetCloseIntercept(p.requestStop)
	p.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyQ, fyne.KeyEscape:
			p.requestStop()
		}
	})
}

func (p *Preview) requestStop() {
	p.hide()
	if p.OnStop != nil {
		p.OnStop()
	}
}
