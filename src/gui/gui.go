package gui

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"slices"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"vr-dimension/src/appstate"
	"vr-dimension/src/clipboard"
	"vr-dimension/src/screenshot"
	"vr-dimension/src/settings"
	"vr-dimension/src/tray"
	"vr-dimension/src/window"
)

// SettingsTitle is the title of the main settings window.
const SettingsTitle = "VR Dimension ~Sixx"

// ResolutionPresets are offered in the resolution picker; any WxH is accepted.
var ResolutionPresets = []string{"720x720", "1080x1080", "1280x720", "1920x1080"}

var instructions = []string{
	"STEP 1: OPEN SIMULATOR IN WINDOW MODE",
	"STEP 2: CONNECT VR HEADSET",
	"STEP 3: START VR MODE IN SIMULATOR",
	"STEP 4: SELECT GAME IN PROCESS DROP DOWN, PRESS REFRESH BUTTON, PRESS START CAPTURE BUTTON",
	"CLICK X IN GUI TO EXIT APP",
	"TIP: RESIZE GAME WINDOW TO REMOVE LEFT AND RIGHT BORDERS FROM VIRTUAL DISPLAY",
}

// Controller is the capture loop as seen by the GUI.
type Controller interface {
	Start()
	Stop()
	LastFrame() *image.RGBA
}

type Options struct {
	State        *appstate.State
	Controller   Controller
	Finder       window.Finder
	Preview      *Preview
	SettingsPath string
	// TargetHint is matched case-insensitively against window titles on
	// Refresh when nothing is selected yet.
	TargetHint string
	// OnQuit runs when the settings window is closed, before the app quits.
	OnQuit func()
}

// UI is the settings window plus its tray menu.
type UI struct {
	app   fyne.App
	opts  Options
	state *appstate.State
	win   fyne.Window

	windowSelect *widget.Select
	resolution   *widget.SelectEntry
	status       *widget.Label
	startBtn     *widget.Button
	stopBtn      *widget.Button

	contrastSlider *widget.Slider

	frameRate  binding.Float
	brightness binding.Float
	contrast   binding.Float
	cropX      binding.Float
	cropTop    binding.Float
	cropBottom binding.Float
}

func New(app fyne.App, opts Options) *UI {
	if opts.State == nil {
		opts.State = appstate.New(nil)
	}
	if opts.Finder == nil {
		opts.Finder = window.NewFinder()
	}
	u := &UI{app: app, opts: opts, state: opts.State}
	if opts.Preview != nil && opts.Controller != nil && opts.Preview.OnStop == nil {
		opts.Preview.OnStop = opts.Controller.Stop
	}

	app.SetIcon(tray.Icon)
	u.win = app.NewWindow(SettingsTitle)
	u.win.SetMaster()
	u.win.SetContent(u.build())
	u.win.Resize(fyne.NewSize(800, 600))
	u.win.SetCloseIntercept(u.quit)

	// Sync from the latest state rather than the notified snapshot so a
	// queued stale snapshot cannot undo a newer slider edit.
	u.state.Subscribe(func(appstate.Snapshot) {
		fyne.Do(func() { u.sync(u.state.Snapshot()) })
	})
	u.sync(u.state.Snapshot())

	tray.Install(app, tray.Actions{
		Show:  u.win.Show,
		Start: u.start,
		Stop:  u.stop,
	})
	return u
}

func (u *UI) Window() fyne.Window { return u.win }

// ShowAndRun refreshes the window list and blocks in the fyne main loop.
func (u *UI) ShowAndRun() {
	if err := u.Refresh(); err != nil {
		log.Printf("Initial window refresh failed: %v", err)
	}
	u.win.ShowAndRun()
}

func (u *UI) build() fyne.CanvasObject {
	u.windowSelect = widget.NewSelect(nil, func(title string) {
		u.state.SelectWindow(title)
	})
	u.windowSelect.PlaceHolder = "(select a window)"
	refresh := widget.NewButton("Refresh", func() {
		if err := u.Refresh(); err != nil {
			dialog.ShowError(err, u.win)
		}
	})

	u.resolution = widget.NewSelectEntry(ResolutionPresets)
	// Presets apply on pick; typed values apply on Enter so partial input
	// like "1920x10" never reaches the preview.
	u.resolution.OnChanged = func(text string) {
		if slices.Contains(ResolutionPresets, text) {
			u.applyResolution(text)
		}
	}
	u.resolution.OnSubmitted = u.applyResolution

	cur := u.state.Settings()
	u.frameRate = u.bindSetting(float64(cur.FrameRate), func(s *settings.Settings, v float64) { s.FrameRate = int(math.Round(v)) })
	u.brightness = u.bindSetting(cur.Brightness, func(s *settings.Settings, v float64) { s.Brightness = v })
	u.contrast = u.bindSetting(cur.Contrast, func(s *settings.Settings, v float64) { s.Contrast = v })
	u.cropX = u.bindSetting(cur.CropX, func(s *settings.Settings, v float64) { s.CropX = v })
	u.cropTop = u.bindSetting(cur.CropYTop, func(s *settings.Settings, v float64) { s.CropYTop = v })
	u.cropBottom = u.bindSetting(cur.CropYBottom, func(s *settings.Settings, v float64) { s.CropYBottom = v })

	u.contrastSlider = newSlider(u.contrast, 0, settings.MaxContrast, 0.05)

	form := widget.NewForm(
		widget.NewFormItem("Select Process", container.NewBorder(nil, nil, nil, refresh, u.windowSelect)),
		widget.NewFormItem("Resolution", u.resolution),
		widget.NewFormItem("Frame Rate", sliderRow(u.frameRate, settings.MinFrameRate, settings.MaxFrameRate, 1, "%.0f fps")),
		widget.NewFormItem("Brightness", sliderRow(u.brightness, -settings.MaxBrightness, settings.MaxBrightness, 1, "%.0f")),
		widget.NewFormItem("Contrast", labelledSlider(u.contrastSlider, u.contrast, "%.2f")),
		widget.NewFormItem("Crop Sides", sliderRow(u.cropX, 0, 0.45, 0.01, "%.2f")),
		widget.NewFormItem("Crop Top", sliderRow(u.cropTop, 0, 0.45, 0.01, "%.2f")),
		widget.NewFormItem("Crop Bottom", sliderRow(u.cropBottom, 0, 0.45, 0.01, "%.2f")),
	)

	u.startBtn = widget.NewButton("Start Capture", u.start)
	u.startBtn.Importance = widget.HighImportance
	u.stopBtn = widget.NewButton("Stop Capture", u.stop)
	buttons := container.NewGridWithColumns(4,
		u.startBtn,
		u.stopBtn,
		widget.NewButton("Save Settings", u.save),
		widget.NewButton("Copy Frame", u.copyFrame),
	)
	extras := container.NewHBox(layout.NewSpacer(),
		widget.NewButton("Buy Sixx Coffee", u.showAbout),
		widget.NewButton("AV Info", u.showAVInfo),
		layout.NewSpacer(),
	)

	u.status = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	steps := container.NewVBox()
	for _, line := range instructions {
		l := widget.NewLabelWithStyle(line, fyne.TextAlignCenter, fyne.TextStyle{})
		l.Wrapping = fyne.TextWrapWord
		steps.Add(l)
	}

	return container.NewVBox(form, buttons, extras, u.status, widget.NewSeparator(), steps)
}

func sliderRow(b binding.Float, min, max, step float64, format string) fyne.CanvasObject {
	return labelledSlider(newSlider(b, min, max, step), b, format)
}

func newSlider(b binding.Float, min, max, step float64) *widget.Slider {
	s := widget.NewSliderWithData(min, max, b)
	s.Step = step
	return s
}

func labelledSlider(s *widget.Slider, b binding.Float, format string) fyne.CanvasObject {
	value := widget.NewLabelWithData(binding.FloatToStringWithFormat(b, format))
	return container.NewBorder(nil, nil, nil, value, s)
}

// bindSetting returns a float binding, seeded with initial, whose edits are
// applied to the shared settings through set.
func (u *UI) bindSetting(initial float64, set func(*settings.Settings, float64)) binding.Float {
	b := binding.NewFloat()
	_ = b.Set(initial)
	b.AddListener(binding.NewDataListener(func() {
		v, err := b.Get()
		if err != nil {
			return
		}
		u.apply(func(s *settings.Settings) { set(s, v) })
	}))
	return b
}

func (u *UI) applyResolution(text string) {
	text = strings.TrimSpace(text)
	if _, _, err := settings.ParseResolution(text); err != nil {
		u.state.SetStatus("Invalid setting: " + err.Error())
		return
	}
	u.apply(func(s *settings.Settings) { s.Resolution = text })
}

func (u *UI) apply(fn func(*settings.Settings)) {
	if err := u.state.UpdateSettings(fn); err != nil {
		u.state.SetStatus("Invalid setting: " + err.Error())
	}
}

// sync pushes a state snapshot into the widgets. Setting a widget to the
// value it already holds is a no-op in appstate, so this cannot loop.
func (u *UI) sync(snap appstate.Snapshot) {
	u.status.SetText("Status: " + snap.Status)

	if snap.Capturing {
		u.startBtn.Disable()
		u.stopBtn.Enable()
	} else {
		u.startBtn.Enable()
		u.stopBtn.Disable()
	}

	if snap.Window != "" && u.windowSelect.Selected != snap.Window {
		if !slices.Contains(u.windowSelect.Options, snap.Window) {
			u.windowSelect.Options = append(u.windowSelect.Options, snap.Window)
		}
		u.windowSelect.SetSelected(snap.Window)
	}
	if u.resolution.Text != snap.Settings.Resolution {
		u.resolution.SetText(snap.Settings.Resolution)
	}

	s := snap.Settings
	setIfChanged(u.frameRate, float64(s.FrameRate))
	setIfChanged(u.brightness, s.Brightness)
	setIfChanged(u.contrast, s.Contrast)
	setIfChanged(u.cropX, s.CropX)
	setIfChanged(u.cropTop, s.CropYTop)
	setIfChanged(u.cropBottom, s.CropYBottom)
}

func setIfChanged(b binding.Float, v float64) {
	if cur, err := b.Get(); err == nil && cur == v {
		return
	}
	_ = b.Set(v)
}

// Refresh reloads the window list. With nothing selected it picks the first
// title containing the target hint.
func (u *UI) Refresh() error {
	infos, err := u.opts.Finder.List()
	if err != nil {
		u.state.SetStatus("Window list failed: " + err.Error())
		return fmt.Errorf("failed to list windows: %w", err)
	}
	titles := window.Titles(infos)
	current := u.state.SelectedWindow()
	if current != "" && !slices.Contains(titles, current) {
		titles = append(titles, current)
	}
	u.windowSelect.Options = titles
	u.windowSelect.Refresh()
	log.Printf("Window list refreshed: %d windows", len(infos))

	if current == "" && u.opts.TargetHint != "" {
		if info, ok := window.FindContaining(window.Static(infos), u.opts.TargetHint); ok {
			u.windowSelect.SetSelected(info.Title)
		}
	}
	u.state.SetStatus(fmt.Sprintf("Found %d windows", len(infos)))
	return nil
}

func (u *UI) start() {
	if u.state.SelectedWindow() == "" {
		u.state.SetStatus("Select a window first")
		return
	}
	if u.opts.Controller != nil {
		u.opts.Controller.Start()
	}
}

func (u *UI) stop() {
	if u.opts.Controller != nil {
		u.opts.Controller.Stop()
	}
}

func (u *UI) save() {
	s := u.state.Settings()
	if err := s.Save(u.opts.SettingsPath); err != nil {
		log.Printf("Error saving settings: %v", err)
		dialog.ShowError(err, u.win)
		return
	}
	log.Printf("Settings saved to %s", u.opts.SettingsPath)
	u.state.SetStatus("Settings saved")
}

var errNoFrame = errors.New("no frame captured yet")

func (u *UI) copyFrame() {
	if err := u.copyLastFrame(); err != nil {
		u.state.SetStatus("Copy failed: " + err.Error())
		return
	}
	u.state.SetStatus("Frame copied to clipboard")
}

func (u *UI) copyLastFrame() error {
	if u.opts.Controller == nil {
		return errNoFrame
	}
	frame := u.opts.Controller.LastFrame()
	if frame == nil {
		return errNoFrame
	}
	png, err := screenshot.EncodePNG(frame)
	if err != nil {
		return err
	}
	return clipboard.WriteImage(png)
}

func (u *UI) quit() {
	log.Printf("Settings window closed, exiting")
	if u.opts.OnQuit != nil {
		u.opts.OnQuit()
	}
	u.app.Quit()
}
