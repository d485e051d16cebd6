package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/kbinani/screenshot"

	"vr-dimension/src/window"
)

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// CaptureBounds captures a window's bounding box. The box is clipped to the
// virtual desktop first, so a window hanging off-screen still yields the
// visible part instead of an error.
func CaptureBounds(b window.Bounds) (*image.RGBA, error) {
	if b.Empty() {
		return nil, fmt.Errorf("invalid bounds dimensions: width=%d, height=%d", b.Width, b.Height)
	}

	rect := b.Rect()
	if desktop, err := VirtualBounds(); err == nil {
		rect = ClipToDesktop(rect, desktop)
		if rect.Empty() {
			return nil, fmt.Errorf("window %v is outside the desktop %v", b, desktop)
		}
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %w", rect, err)
	}
	return img, nil
}

// ClipToDesktop intersects rect with desktop.
func ClipToDesktop(rect, desktop image.Rectangle) image.Rectangle {
	return rect.Intersect(desktop)
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
