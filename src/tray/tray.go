package tray

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Actions are the callbacks behind the tray menu items. Nil entries are
// omitted from the menu.
type Actions struct {
	Start func()
	Stop  func()
	Show  func()
}

// Menu builds the tray menu. fyne appends its own Quit item.
func Menu(a Actions) *fyne.Menu {
	var items []*fyne.MenuItem
	if a.Show != nil {
		items = append(items, fyne.NewMenuItem("Show Settings", a.Show))
	}
	if a.Start != nil || a.Stop != nil {
		if len(items) > 0 {
			items = append(items, fyne.NewMenuItemSeparator())
		}
	}
	if a.Start != nil {
		items = append(items, fyne.NewMenuItem("Start Capture", a.Start))
	}
	if a.Stop != nil {
		items = append(items, fyne.NewMenuItem("Stop Capture", a.Stop))
	}
	return fyne.NewMenu("VR Dimension", items...)
}

// Install attaches the tray icon and menu when the driver supports a
// system tray. It reports whether a tray was installed.
func Install(app fyne.App, a Actions) bool {
	desk, ok := app.(desktop.App)
	if !ok {
		log.Printf("System tray not supported by this driver")
		return false
	}
	desk.SetSystemTrayIcon(Icon)
	desk.SetSystemTrayMenu(Menu(a))
	return true
}
