// Package eye turns a captured side-by-side stereo frame into a single
// cropped, resized and colour-adjusted eye view.
package eye

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// MaxDimension bounds each side of the output image.
const MaxDimension = 8192

// ErrEmptyRegion is returned when cropping leaves no pixels.
var ErrEmptyRegion = errors.New("crop leaves an empty region")

// Params describes one pass of the pipeline.
type Params struct {
	Width       int
	Height      int
	CropX       float64
	CropYTop    float64
	CropYBottom float64
	Contrast    float64
	Brightness  float64
}

func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Width > MaxDimension || p.Height > MaxDimension {
		return fmt.Errorf("invalid target size %dx%d (each side 1..%d)", p.Width, p.Height, MaxDimension)
	}
	if p.CropX < 0 || p.CropX >= 0.5 {
		return fmt.Errorf("crop_x %.3f out of range [0, 0.5)", p.CropX)
	}
	if p.CropYTop < 0 || p.CropYBottom < 0 || p.CropYTop+p.CropYBottom >= 1 {
		return fmt.Errorf("vertical crop %.3f/%.3f leaves no rows", p.CropYTop, p.CropYBottom)
	}
	if p.Contrast < 0 {
		return fmt.Errorf("contrast %.3f must not be negative", p.Contrast)
	}
	return nil
}

// Process runs the full chain: opaque -> right eye -> margins -> aspect crop
// -> resize -> brightness/contrast. The result is always Width x Height.
func Process(frame *image.RGBA, p Params) (*image.RGBA, error) {
	if frame == nil {
		return nil, errors.New("nil frame")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if frame.Bounds().Dx() < 2 || frame.Bounds().Dy() < 1 {
		return nil, fmt.Errorf("frame too small: %v", frame.Bounds().Size())
	}

	eye := RightEye(Opaque(frame))
	cropped, err := CropMargins(eye, p.CropX, p.CropYTop, p.CropYBottom)
	if err != nil {
		return nil, err
	}
	out := Resize(CenterCrop(cropped, p.Width, p.Height), p.Width, p.Height)
	return Adjust(out, p.Contrast, p.Brightness), nil
}

// Opaque returns a zero-origin copy of img with every alpha byte set to 255.
func Opaque(img *image.RGBA) *image.RGBA {
	out := copyRGBA(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// RightEye returns the right half of a side-by-side frame. Odd widths keep
// the extra column on the right side.
func RightEye(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	half := b.Min.X + b.Dx()/2
	return subRGBA(img, image.Rect(half, b.Min.Y, b.Max.X, b.Max.Y))
}

// CropMargins trims fractional margins: cropX from each side, top and bottom
// from the respective edges. Margins truncate toward zero.
func CropMargins(img *image.RGBA, cropX, top, bottom float64) (*image.RGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cx := int(float64(w) * cropX)
	ct := int(float64(h) * top)
	cb := int(float64(h) * bottom)

	r := image.Rect(b.Min.X+cx, b.Min.Y+ct, b.Max.X-cx, b.Max.Y-cb)
	if r.Empty() {
		return nil, fmt.Errorf("%w: %dx%d with margins x=%d top=%d bottom=%d", ErrEmptyRegion, w, h, cx, ct, cb)
	}
	return subRGBA(img, r), nil
}

// CenterCrop returns the largest centred sub-image with aspect ratio w:h.
func CenterCrop(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || sw == 0 || sh == 0 {
		return img
	}

	// Compare sw/sh with w/h without floats.
	cw, ch := sw, sh
	switch {
	case sw*h > sh*w:
		cw = max(1, sh*w/h)
	case sw*h < sh*w:
		ch = max(1, sw*h/w)
	default:
		return img
	}

	x0 := b.Min.X + (sw-cw)/2
	y0 := b.Min.Y + (sh-ch)/2
	return subRGBA(img, image.Rect(x0, y0, x0+cw, y0+ch))
}

// Resize scales img to exactly w x h.
func Resize(img *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Adjust applies out = contrast*in + brightness per colour channel, rounded
// and saturated to [0, 255]. Alpha is left unchanged.
func Adjust(img *image.RGBA, contrast, brightness float64) *image.RGBA {
	out := copyRGBA(img)
	if contrast == 1 && brightness == 0 {
		return out
	}
	lut := adjustTable(contrast, brightness)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = lut[out.Pix[i]]
		out.Pix[i+1] = lut[out.Pix[i+1]]
		out.Pix[i+2] = lut[out.Pix[i+2]]
	}
	return out
}

func adjustTable(contrast, brightness float64) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		v := math.Round(contrast*float64(i) + brightness)
		lut[i] = uint8(math.Max(0, math.Min(255, v)))
	}
	return lut
}

// subRGBA returns a zero-origin copy of the r part of img.
func subRGBA(img *image.RGBA, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

func copyRGBA(img *image.RGBA) *image.RGBA {
	return subRGBA(img, img.Bounds())
}

// ToRGBA returns img as a zero-origin *image.RGBA, converting decoded
// images of other colour models.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return copyRGBA(rgba)
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
