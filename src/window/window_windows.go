//go:build windows

package window

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32            = windows.NewLazySystemDLL("user32.dll")
	procGetWindowRect  = user32.NewProc("GetWindowRect")
	procGetWindowTextW = user32.NewProc("GetWindowTextW")
	procIsIconic       = user32.NewProc("IsIconic")
)

const maxTitleLen = 512

type windowsFinder struct{}

func newPlatformFinder() Finder { return windowsFinder{} }

func (windowsFinder) List() ([]Info, error) {
	var infos []Info
	cb := windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		if !windows.IsWindowVisible(hwnd) || isIconic(hwnd) {
			return 1
		}
		title := windowTitle(hwnd)
		if title == "" {
			return 1
		}
		b, ok := windowBounds(hwnd)
		if !ok || b.Empty() {
			return 1
		}
		infos = append(infos, Info{Title: title, Bounds: b})
		return 1
	})
	if err := windows.EnumWindows(cb, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	return infos, nil
}

func (f windowsFinder) Find(title string) (Info, error) { return Lookup(f, title) }

func windowTitle(hwnd windows.HWND) string {
	buf := make([]uint16, maxTitleLen)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf[:n])
}

func windowBounds(hwnd windows.HWND) (Bounds, bool) {
	var r windows.Rect
	ret, _, _ := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Bounds{}, false
	}
	return Bounds{
		Left:   int(r.Left),
		Top:    int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}, true
}

func isIconic(hwnd windows.HWND) bool {
	ret, _, _ := procIsIconic.Call(uintptr(hwnd))
	return ret != 0
}
