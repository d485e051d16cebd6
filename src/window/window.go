// Package window enumerates top-level application windows and reports
// their on-screen bounding boxes.
package window

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("window not found")

// Bounds is the pixel rectangle of a window in virtual-desktop coordinates.
type Bounds struct {
	Left   int
	Top    int
	Width  int
	Height int
}

func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Left+b.Width, b.Top+b.Height)
}

func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

func (b Bounds) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", b.Width, b.Height, b.Left, b.Top)
}

// Info describes one top-level window.
type Info struct {
	Title  string
	Bounds Bounds
}

// Finder lists windows and looks them up by title.
type Finder interface {
	List() ([]Info, error)
	Find(title string) (Info, error)
}

// NewFinder returns the platform implementation.
func NewFinder() Finder { return newPlatformFinder() }

// Lookup is the Find implementation shared by the platform finders. It
// returns the first window titled exactly title, falling back to the first
// whose title contains it case-insensitively, so a game that appends a
// version or FPS counter to its title keeps being tracked.
func Lookup(f Finder, title string) (Info, error) {
	infos, err := f.List()
	if err != nil {
		return Info{}, err
	}
	for _, info := range infos {
		if info.Title == title {
			return info, nil
		}
	}
	if info, ok := containing(infos, title); ok {
		return info, nil
	}
	return Info{}, fmt.Errorf("%w: %q", ErrNotFound, title)
}

// FindContaining returns the first window whose title contains substr
// (case-insensitive). Used to auto-select a known target on refresh.
func FindContaining(f Finder, substr string) (Info, bool) {
	if strings.TrimSpace(substr) == "" {
		return Info{}, false
	}
	infos, err := f.List()
	if err != nil {
		return Info{}, false
	}
	return containing(infos, substr)
}

func containing(infos []Info, substr string) (Info, bool) {
	if strings.TrimSpace(substr) == "" {
		return Info{}, false
	}
	needle := strings.ToLower(substr)
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Title), needle) {
			return info, true
		}
	}
	return Info{}, false
}

// Titles returns the non-empty titles of infos, de-duplicated and sorted
// case-insensitively.
func Titles(infos []Info) []string {
	seen := make(map[string]bool, len(infos))
	var titles []string
	for _, info := range infos {
		t := strings.TrimSpace(info.Title)
		if t == "" || seen[info.Title] {
			continue
		}
		seen[info.Title] = true
		titles = append(titles, info.Title)
	}
	sort.SliceStable(titles, func(i, j int) bool {
		return strings.ToLower(titles[i]) < strings.ToLower(titles[j])
	})
	return titles
}

// Static is a fixed Finder, handy for tests and offline tools.
type Static []Info

func (s Static) List() ([]Info, error) { return append([]Info(nil), s...), nil }

func (s Static) Find(title string) (Info, error) { return Lookup(s, title) }
