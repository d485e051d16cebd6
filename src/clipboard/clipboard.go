package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	ready   bool
)

// ErrUnavailable is returned by writes when Init failed or was never called.
var ErrUnavailable = errors.New("clipboard unavailable")

func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		ready = false
		return err
	}
	ready = true
	return nil
}

// WriteImage puts PNG-encoded image bytes on the clipboard.
func WriteImage(png []byte) error {
	if len(png) == 0 {
		return errors.New("empty image")
	}
	return write(clipboard.FmtImage, png)
}

func write(fmtType clipboard.Format, data []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(fmtType, data)
	return nil
}
