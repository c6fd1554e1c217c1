package transform

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/gift"
)

// MaxDimension bounds the width and height any step may produce.
const MaxDimension = 10000

var (
	ErrCropOutOfBounds = errors.New("crop rectangle exceeds image bounds")
	ErrTooLarge        = errors.New("output dimensions too large")
)

// RotationFill is the background for rotations that are not a multiple of
// 90 degrees. Formats without alpha render it as black.
var RotationFill color.Color = color.Transparent

// sepia tint (112, 66, 20) scaled to unit luminance
const (
	sepiaR = 1.503
	sepiaG = 0.886
	sepiaB = 0.268
)

var sharpenKernel = []float32{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

type step struct {
	name string
	run  func(image.Image) (image.Image, error)
}

// steps lists the operations of r in their fixed order.
func steps(r Request) []step {
	var out []step

	if r.Resize != nil && (r.Resize.Width != nil || r.Resize.Height != nil) {
		rs := *r.Resize
		out = append(out, step{"resize", func(img image.Image) (image.Image, error) { return resize(img, rs) }})
	}
	if r.Crop != nil {
		c := *r.Crop
		out = append(out, step{"crop", func(img image.Image) (image.Image, error) { return crop(img, c) }})
	}
	if r.Rotate != nil && normalizeDegrees(*r.Rotate) != 0 {
		deg := normalizeDegrees(*r.Rotate)
		out = append(out, step{"rotate", func(img image.Image) (image.Image, error) { return rotate(img, deg) }})
	}
	if r.Flip {
		out = append(out, step{"flip", filterStep(gift.FlipVertical())})
	}
	if r.Flop {
		out = append(out, step{"flop", filterStep(gift.FlipHorizontal())})
	}

	if f := r.Filters; f != nil {
		if f.Grayscale {
			out = append(out, step{"grayscale", filterStep(gift.Grayscale())})
		}
		if f.Sepia {
			out = append(out, step{"sepia", filterStep(gift.ColorFunc(sepia))})
		}
		if f.Blur != nil {
			out = append(out, step{"blur", filterStep(gift.GaussianBlur(float32(*f.Blur)))})
		}
		if f.Sharpen {
			out = append(out, step{"sharpen", filterStep(gift.Convolution(sharpenKernel, false, false, false, 0))})
		}
	}

	return out
}

// Operations returns the names of the steps r will run, in order.
func (r Request) Operations() []string {
	var names []string
	for _, s := range steps(r) {
		names = append(names, s.name)
	}
	return names
}

func filterStep(f gift.Filter) func(image.Image) (image.Image, error) {
	return func(img image.Image) (image.Image, error) {
		return draw(img, f), nil
	}
}

func draw(src image.Image, filters ...gift.Filter) image.Image {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// fitInside scales w x h to fit the requested box preserving aspect ratio.
// A missing side is derived from the other.
func fitInside(w, h int, r Resize) (int, int) {
	fw, fh := float64(w), float64(h)

	var scale float64
	switch {
	case r.Width != nil && r.Height != nil:
		scale = math.Min(float64(*r.Width)/fw, float64(*r.Height)/fh)
	case r.Width != nil:
		scale = float64(*r.Width) / fw
	default:
		scale = float64(*r.Height) / fh
	}

	nw := int(math.Round(fw * scale))
	nh := int(math.Round(fh * scale))
	if r.Width != nil && r.Height == nil {
		nw = *r.Width
	}
	if r.Height != nil && r.Width == nil {
		nh = *r.Height
	}

	return max(nw, 1), max(nh, 1)
}

func resize(img image.Image, r Resize) (image.Image, error) {
	b := img.Bounds()
	w, h := fitInside(b.Dx(), b.Dy(), r)
	if w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("resize to %dx%d: %w", w, h, ErrTooLarge)
	}
	return draw(img, gift.Resize(w, h, gift.LanczosResampling)), nil
}

func crop(img image.Image, c Crop) (image.Image, error) {
	b := img.Bounds()
	rect := image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
	if c.Width <= 0 || c.Height <= 0 || !rect.In(image.Rect(0, 0, b.Dx(), b.Dy())) {
		return nil, fmt.Errorf("crop %v from %dx%d: %w", rect, b.Dx(), b.Dy(), ErrCropOutOfBounds)
	}
	return draw(img, gift.Crop(rect.Add(b.Min))), nil
}

// normalizeDegrees maps any angle into [0, 360).
func normalizeDegrees(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// rotate turns img clockwise by deg in [0, 360).
func rotate(img image.Image, deg int) (image.Image, error) {
	switch deg {
	case 0:
		return img, nil
	case 90:
		return draw(img, gift.Rotate270()), nil
	case 180:
		return draw(img, gift.Rotate180()), nil
	case 270:
		return draw(img, gift.Rotate90()), nil
	}

	// gift rotates counter-clockwise
	g := gift.New(gift.Rotate(float32(-deg), RotationFill, gift.CubicInterpolation))
	b := g.Bounds(img.Bounds())
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		return nil, fmt.Errorf("rotate to %dx%d: %w", b.Dx(), b.Dy(), ErrTooLarge)
	}
	dst := image.NewNRGBA(b)
	g.Draw(dst, img)
	return dst, nil
}

func sepia(r, g, b, a float32) (float32, float32, float32, float32) {
	l := 0.299*r + 0.587*g + 0.114*b
	return clamp(l * sepiaR), clamp(l * sepiaG), clamp(l * sepiaB), a
}

func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
