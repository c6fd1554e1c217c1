package transform

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func formatPtr(f Format) *Format { return &f }

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// marker returns a w x h blue PNG with a red pixel at the top-left corner.
func marker(t *testing.T, w, h int) []byte {
	img := solid(w, h, color.NRGBA{0, 0, 255, 255})
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	return encodePNG(t, img)
}

func isRed(c color.NRGBA) bool {
	return c.R == 255 && c.G == 0 && c.B == 0
}

func TestApplyEmptyRequestKeepsFormatAndSize(t *testing.T) {
	src := encodeJPEG(t, solid(800, 600, color.White))

	res, err := NewPipeline().Apply(src, Request{})
	require.NoError(t, err)

	assert.Equal(t, Metadata{Format: JPEG, Width: 800, Height: 600, Size: len(res.Data)}, res.Metadata)
	info, err := Inspect(res.Data)
	require.NoError(t, err)
	assert.Equal(t, JPEG, info.Format)
}

func TestApplyFormatOnlyKeepsDimensions(t *testing.T) {
	src := encodeJPEG(t, solid(320, 200, color.White))

	for _, f := range []Format{JPEG, PNG, WebP, GIF} {
		t.Run(string(f), func(t *testing.T) {
			res, err := NewPipeline().Apply(src, Request{Format: formatPtr(f)})
			require.NoError(t, err)

			assert.Equal(t, f, res.Metadata.Format)
			assert.Equal(t, 320, res.Metadata.Width)
			assert.Equal(t, 200, res.Metadata.Height)

			info, err := Inspect(res.Data)
			require.NoError(t, err)
			assert.Equal(t, f, info.Format)
			assert.Equal(t, 320, info.Width)
			assert.Equal(t, 200, info.Height)
		})
	}
}

func TestApplyResize(t *testing.T) {
	src := encodeJPEG(t, solid(800, 600, color.White))

	tests := []struct {
		name         string
		resize       Resize
		wantW, wantH int
	}{
		{"width only", Resize{Width: intPtr(400)}, 400, 300},
		{"height only", Resize{Height: intPtr(150)}, 200, 150},
		{"box limited by width", Resize{Width: intPtr(100), Height: intPtr(100)}, 100, 75},
		{"box limited by height", Resize{Width: intPtr(1000), Height: intPtr(300)}, 400, 300},
		{"enlarge", Resize{Width: intPtr(1600)}, 1600, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := tt.resize
			res, err := NewPipeline().Apply(src, Request{Resize: &rs})
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, res.Metadata.Width)
			assert.Equal(t, tt.wantH, res.Metadata.Height)
		})
	}
}

func TestFitInsideRoundsAndNeverCollapses(t *testing.T) {
	w, h := fitInside(1000, 333, Resize{Width: intPtr(100)})
	assert.Equal(t, 100, w)
	assert.Equal(t, 33, h)

	w, h = fitInside(1000, 1, Resize{Width: intPtr(10)})
	assert.Equal(t, 10, w)
	assert.Equal(t, 1, h)
}

func TestApplyResizeTooLarge(t *testing.T) {
	src := encodePNG(t, solid(10, 10, color.White))

	_, err := NewPipeline().Apply(src, Request{Resize: &Resize{Width: intPtr(MaxDimension + 1)}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, apperror.KindProcessing, apperror.KindOf(err))
}

func TestApplyCropUsesResizedCoordinates(t *testing.T) {
	src := encodeJPEG(t, solid(800, 600, color.White))

	req := Request{
		Resize: &Resize{Width: intPtr(400)},
		Crop:   &Crop{X: 100, Y: 100, Width: 300, Height: 200},
	}
	res, err := NewPipeline().Apply(src, req)
	require.NoError(t, err)
	assert.Equal(t, 300, res.Metadata.Width)
	assert.Equal(t, 200, res.Metadata.Height)

	// fits the original but not the resized image
	req.Crop = &Crop{X: 500, Y: 0, Width: 100, Height: 100}
	_, err = NewPipeline().Apply(src, req)
	assert.ErrorIs(t, err, ErrCropOutOfBounds)
}

func TestApplyCropOutsideBoundsFails(t *testing.T) {
	src := encodePNG(t, solid(100, 100, color.White))

	crops := []Crop{
		{X: 200, Y: 200, Width: 10, Height: 10},
		{X: 0, Y: 0, Width: 101, Height: 10},
		{X: 95, Y: 95, Width: 10, Height: 10},
	}
	for _, c := range crops {
		c := c
		_, err := NewPipeline().Apply(src, Request{Crop: &c})
		require.Error(t, err)

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindProcessing, appErr.Kind)
		assert.Equal(t, "Crop area is outside the image bounds.", appErr.Message)
	}
}

func TestApplyResizeThenRotate90SwapsDimensions(t *testing.T) {
	src := encodeJPEG(t, solid(800, 600, color.White))

	res, err := NewPipeline().Apply(src, Request{Resize: &Resize{Width: intPtr(400)}, Rotate: intPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, 300, res.Metadata.Width)
	assert.Equal(t, 400, res.Metadata.Height)
}

func TestApplyRotateIsClockwise(t *testing.T) {
	src := marker(t, 4, 2)

	tests := []struct {
		deg          int
		wantW, wantH int
		x, y         int
	}{
		{90, 2, 4, 1, 0},
		{-270, 2, 4, 1, 0},
		{180, 4, 2, 3, 1},
		{270, 2, 4, 0, 3},
		{-90, 2, 4, 0, 3},
		{360, 4, 2, 0, 0},
		{-360, 4, 2, 0, 0},
	}

	for _, tt := range tests {
		res, err := NewPipeline().Apply(src, Request{Rotate: intPtr(tt.deg)})
		require.NoError(t, err)

		img := decodePNG(t, res.Data)
		assert.Equal(t, tt.wantW, img.Bounds().Dx(), "deg %d", tt.deg)
		assert.Equal(t, tt.wantH, img.Bounds().Dy(), "deg %d", tt.deg)
		assert.True(t, isRed(nrgbaAt(img, tt.x, tt.y)), "deg %d: marker not at (%d,%d)", tt.deg, tt.x, tt.y)
	}
}

func TestApplyRotateArbitraryAngleFill(t *testing.T) {
	white := solid(100, 100, color.White)

	res, err := NewPipeline().Apply(encodePNG(t, white), Request{Rotate: intPtr(45)})
	require.NoError(t, err)
	assert.Greater(t, res.Metadata.Width, 100)
	assert.Greater(t, res.Metadata.Height, 100)

	img := decodePNG(t, res.Data)
	assert.Equal(t, uint8(0), nrgbaAt(img, 0, 0).A, "corner should be transparent")
	center := nrgbaAt(img, res.Metadata.Width/2, res.Metadata.Height/2)
	assert.Equal(t, uint8(255), center.A)

	// JPEG has no alpha so the fill comes out black
	res, err = NewPipeline().Apply(encodeJPEG(t, white), Request{Rotate: intPtr(45)})
	require.NoError(t, err)
	out, err := jpeg.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	r, g, b, _ := out.At(0, 0).RGBA()
	assert.Less(t, r>>8, uint32(30))
	assert.Less(t, g>>8, uint32(30))
	assert.Less(t, b>>8, uint32(30))
}

func TestApplyFlipAndFlop(t *testing.T) {
	src := marker(t, 4, 3)

	res, err := NewPipeline().Apply(src, Request{Flip: true})
	require.NoError(t, err)
	assert.True(t, isRed(nrgbaAt(decodePNG(t, res.Data), 0, 2)))

	res, err = NewPipeline().Apply(src, Request{Flop: true})
	require.NoError(t, err)
	assert.True(t, isRed(nrgbaAt(decodePNG(t, res.Data), 3, 0)))

	res, err = NewPipeline().Apply(src, Request{Flip: true, Flop: true})
	require.NoError(t, err)
	assert.True(t, isRed(nrgbaAt(decodePNG(t, res.Data), 3, 2)))
}

func TestApplyGrayscaleAndSepia(t *testing.T) {
	src := encodePNG(t, solid(8, 8, color.NRGBA{200, 40, 90, 255}))

	res, err := NewPipeline().Apply(src, Request{Filters: &Filters{Grayscale: true}})
	require.NoError(t, err)
	c := nrgbaAt(decodePNG(t, res.Data), 4, 4)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)

	res, err = NewPipeline().Apply(src, Request{Filters: &Filters{Grayscale: true, Sepia: true}})
	require.NoError(t, err)
	c = nrgbaAt(decodePNG(t, res.Data), 4, 4)
	assert.Greater(t, c.R, c.G)
	assert.Greater(t, c.G, c.B)
}

func TestApplyBlurAndSharpenKeepDimensions(t *testing.T) {
	src := marker(t, 20, 10)
	blur := 2.5

	res, err := NewPipeline().Apply(src, Request{Filters: &Filters{Blur: &blur, Sharpen: true}})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Metadata.Width)
	assert.Equal(t, 10, res.Metadata.Height)

	// blur spreads the marker
	c := nrgbaAt(decodePNG(t, res.Data), 0, 0)
	assert.Less(t, c.R, uint8(255))
}

func TestOperationsFixedOrder(t *testing.T) {
	blur := 1.0
	req := Request{
		Filters: &Filters{Sharpen: true, Blur: &blur, Sepia: true, Grayscale: true},
		Flop:    true,
		Flip:    true,
		Rotate:  intPtr(30),
		Crop:    &Crop{Width: 1, Height: 1},
		Resize:  &Resize{Width: intPtr(10)},
		Format:  formatPtr(PNG),
	}

	assert.Equal(t,
		[]string{"resize", "crop", "rotate", "flip", "flop", "grayscale", "sepia", "blur", "sharpen"},
		req.Operations())
	assert.Empty(t, Request{Rotate: intPtr(0), Resize: &Resize{}}.Operations())
}

func TestApplyIsRepeatable(t *testing.T) {
	src := encodeJPEG(t, solid(640, 480, color.White))
	req := Request{Resize: &Resize{Width: intPtr(200)}, Format: formatPtr(WebP)}

	first, err := NewPipeline().Apply(src, req)
	require.NoError(t, err)
	second, err := NewPipeline().Apply(src, req)
	require.NoError(t, err)

	assert.Equal(t, first.Metadata.Format, second.Metadata.Format)
	assert.Equal(t, first.Metadata.Width, second.Metadata.Width)
	assert.Equal(t, first.Metadata.Height, second.Metadata.Height)
}

func TestApplyUndecodableSourceIsInternal(t *testing.T) {
	_, err := NewPipeline().Apply([]byte("not an image"), Request{})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

// withPNGSize rewrites the IHDR dimensions of an encoded PNG and fixes the
// chunk checksum, so the header claims a size the pixel data never had.
func withPNGSize(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestOversizedImagesRejectedBeforeDecode(t *testing.T) {
	huge := withPNGSize(encodePNG(t, solid(4, 4, color.White)), 12000, 12000)

	_, err := Inspect(huge)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = NewPipeline().Apply(huge, Request{})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, apperror.KindProcessing, apperror.KindOf(err))

	wide := withPNGSize(encodePNG(t, solid(4, 4, color.White)), MaxDimension+1, 1)
	_, err = Inspect(wide)
	assert.ErrorIs(t, err, ErrTooLarge)

	info, err := Inspect(withPNGSize(encodePNG(t, solid(4, 4, color.White)), MaxDimension, 1))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, info.Width)
}

func TestInspect(t *testing.T) {
	info, err := Inspect(encodeJPEG(t, solid(800, 600, color.White)))
	require.NoError(t, err)
	assert.Equal(t, JPEG, info.Format)
	assert.Equal(t, 800, info.Width)
	assert.Equal(t, 600, info.Height)

	_, err = Inspect([]byte("plain text"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, JPEG, f)
	assert.Equal(t, "jpeg", f.Extension())
	assert.Equal(t, "image/jpeg", f.ContentType())

	_, err = ParseFormat("tiff")
	assert.Error(t, err)
}
