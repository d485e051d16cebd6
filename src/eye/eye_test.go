package eye

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func newFrame(w, h int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

func defaultParams() Params {
	return Params{Width: 720, Height: 720, CropX: 0.09, CropYTop: 0.12, CropYBottom: 0.08, Contrast: 1}
}

func TestRightEyeTakesRightHalf(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img := newFrame(11, 4, red, blue)

	eye := RightEye(img)
	if got := eye.Bounds(); got != image.Rect(0, 0, 6, 4) {
		t.Fatalf("expected 6x4 right eye, got %v", got)
	}
	for x := 0; x < 6; x++ {
		if got := eye.RGBAAt(x, 0); got != blue {
			t.Fatalf("pixel %d: expected right-eye colour, got %#v", x, got)
		}
	}
}

func TestRightEyeHonoursNonZeroOrigin(t *testing.T) {
	img := newFrame(10, 2, color.RGBA{A: 255}, color.RGBA{G: 200, A: 255})
	sub := img.SubImage(image.Rect(2, 0, 10, 2)).(*image.RGBA)

	eye := RightEye(sub)
	if eye.Bounds().Dx() != 4 {
		t.Fatalf("expected 4 columns, got %d", eye.Bounds().Dx())
	}
	if got := eye.RGBAAt(0, 0); got.G != 200 {
		t.Fatalf("expected right-half pixel, got %#v", got)
	}
}

func TestOpaqueForcesAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Pix[3] = 10
	out := Opaque(img)
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("alpha at %d = %d, expected 255", i, out.Pix[i])
		}
	}
	if img.Pix[3] != 10 {
		t.Fatal("Opaque must not modify its input")
	}
}

func TestCropMargins(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))
	out, err := CropMargins(img, 0.09, 0.12, 0.08)
	if err != nil {
		t.Fatalf("CropMargins failed: %v", err)
	}
	// 100 - 2*9 = 82, 200 - 24 - 16 = 160
	if got := out.Bounds(); got.Dx() != 82 || got.Dy() != 160 {
		t.Fatalf("expected 82x160, got %dx%d", got.Dx(), got.Dy())
	}
}

func TestCropMarginsEmpty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	_, err := CropMargins(img, 0.5, 0, 0)
	if !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("expected ErrEmptyRegion, got %v", err)
	}
}

func TestCenterCropAspect(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		w, h         int
		wantW, wantH int
	}{
		{"wide to square", 300, 100, 1, 1, 100, 100},
		{"tall to square", 100, 300, 1, 1, 100, 100},
		{"already square", 50, 50, 720, 720, 50, 50},
		{"square to 16:9", 160, 160, 16, 9, 160, 90},
		{"square to 9:16", 160, 160, 9, 16, 90, 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.srcW, tt.srcH))
			out := CenterCrop(img, tt.w, tt.h)
			if got := out.Bounds(); got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Fatalf("expected %dx%d, got %dx%d", tt.wantW, tt.wantH, got.Dx(), got.Dy())
			}
		})
	}
}

func TestCenterCropIsCentred(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	marker := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	img.SetRGBA(10, 0, marker)

	out := CenterCrop(img, 1, 1)
	if got := out.RGBAAt(0, 0); got != marker {
		t.Fatalf("expected crop to start at column 10, got %#v", got)
	}
}

func TestProcessOutputMatchesResolution(t *testing.T) {
	sizes := []image.Point{{1920, 1080}, {3840, 1080}, {640, 480}, {17, 9}, {2, 200}}
	targets := []image.Point{{720, 720}, {1280, 720}, {1, 1}, {333, 777}}

	for _, src := range sizes {
		frame := newFrame(src.X, src.Y, color.RGBA{R: 20, A: 255}, color.RGBA{G: 200, A: 255})
		for _, dst := range targets {
			p := defaultParams()
			p.Width, p.Height = dst.X, dst.Y
			out, err := Process(frame, p)
			if err != nil {
				t.Fatalf("Process(%v -> %v) failed: %v", src, dst, err)
			}
			if got := out.Bounds(); got != image.Rect(0, 0, dst.X, dst.Y) {
				t.Fatalf("Process(%v -> %v) produced %v", src, dst, got)
			}
		}
	}
}

func TestProcessUsesRightEye(t *testing.T) {
	frame := newFrame(400, 200, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255})
	out, err := Process(frame, Params{Width: 8, Height: 8, Contrast: 1})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := out.RGBAAt(x, y); got.R != 0 || got.B != 255 {
				t.Fatalf("pixel (%d,%d) = %#v, expected pure right-eye blue", x, y, got)
			}
		}
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	if _, err := Process(nil, defaultParams()); err == nil {
		t.Error("expected error for nil frame")
	}
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	bad := defaultParams()
	bad.Width = 0
	if _, err := Process(frame, bad); err == nil {
		t.Error("expected error for zero width")
	}
	bad = defaultParams()
	bad.Width, bad.Height = MaxDimension+1, 720
	if _, err := Process(frame, bad); err == nil {
		t.Error("expected error for a target size beyond MaxDimension")
	}
	bad = defaultParams()
	bad.CropYTop, bad.CropYBottom = 0.6, 0.4
	if _, err := Process(frame, bad); err == nil {
		t.Error("expected error for vertical crop covering the frame")
	}
	if _, err := Process(image.NewRGBA(image.Rect(0, 0, 1, 1)), defaultParams()); err == nil {
		t.Error("expected error for a one-column frame")
	}
}

func TestAdjustFormula(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 100, B: 200, A: 77})

	out := Adjust(img, 1.5, 20)
	got := out.RGBAAt(0, 0)
	want := color.RGBA{R: 35, G: 170, B: 255, A: 77}
	if got != want {
		t.Fatalf("Adjust = %#v, want %#v", got, want)
	}

	out = Adjust(img, 1, -50)
	if got := out.RGBAAt(0, 0); got.R != 0 || got.G != 50 || got.B != 150 {
		t.Fatalf("negative brightness: got %#v", got)
	}
}

func TestAdjustMonotonic(t *testing.T) {
	contrasts := []float64{0, 0.25, 0.5, 1, 1.3, 2, 3, 10}
	brightness := []float64{-255, -100, -1, 0, 1, 50, 255}

	for _, b := range brightness {
		prev := adjustTable(contrasts[0], b)
		for _, c := range contrasts[1:] {
			cur := adjustTable(c, b)
			for i := range cur {
				if cur[i] < prev[i] {
					t.Fatalf("not monotonic in contrast at in=%d b=%.0f c=%.2f: %d < %d", i, b, c, cur[i], prev[i])
				}
			}
			prev = cur
		}
	}

	for _, c := range contrasts {
		prev := adjustTable(c, brightness[0])
		for _, b := range brightness[1:] {
			cur := adjustTable(c, b)
			for i := range cur {
				if cur[i] < prev[i] {
					t.Fatalf("not monotonic in brightness at in=%d c=%.2f b=%.0f", i, c, b)
				}
			}
			prev = cur
		}
		lut := adjustTable(c, 0)
		for i := 1; i < len(lut); i++ {
			if lut[i] < lut[i-1] {
				t.Fatalf("not monotonic in input at %d for c=%.2f", i, c)
			}
		}
	}
}

func TestResizeExactSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 105, 55))
	out := Resize(img, 37, 91)
	if got := out.Bounds(); got != image.Rect(0, 0, 37, 91) {
		t.Fatalf("expected 37x91, got %v", got)
	}
}

func TestToRGBAConvertsAndRebases(t *testing.T) {
	gray := image.NewGray(image.Rect(5, 5, 9, 7))
	gray.SetGray(5, 5, color.Gray{Y: 77})

	out := ToRGBA(gray)
	if out.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v, want zero-origin 4x2", out.Bounds())
	}
	if c := out.RGBAAt(0, 0); c.R != 77 || c.G != 77 || c.B != 77 || c.A != 255 {
		t.Errorf("converted pixel = %+v", c)
	}
}
