//go:build !windows

package window

import (
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
)

// robotgoFinder walks the process table and asks robotgo for each
// process's main window title and bounds.
type robotgoFinder struct{}

func newPlatformFinder() Finder { return robotgoFinder{} }

func (robotgoFinder) List() ([]Info, error) {
	procs, err := robotgo.Process()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var infos []Info
	for _, p := range procs {
		if p.Pid <= 0 {
			continue
		}
		title := strings.TrimSpace(robotgo.GetTitle(p.Pid))
		if title == "" {
			continue
		}
		x, y, w, h := robotgo.GetBounds(p.Pid)
		b := Bounds{Left: x, Top: y, Width: w, Height: h}
		if b.Empty() {
			continue
		}
		infos = append(infos, Info{Title: title, Bounds: b})
	}
	return infos, nil
}

func (f robotgoFinder) Find(title string) (Info, error) { return Lookup(f, title) }
