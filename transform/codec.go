package transform

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const (
	JPEGQuality = 90
	WebPQuality = 90
	GIFColors   = 256
)

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Format Format
	Width  int
	Height int
	Size   int
}

// Inspect sniffs the container format and reads the dimensions from the
// header. Images wider or taller than MaxDimension fail with ErrTooLarge.
func Inspect(data []byte) (Info, error) {
	format, err := detectFormat(data)
	if err != nil {
		return Info{}, err
	}

	var cfg image.Config
	if format == WebP {
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return Info{}, fmt.Errorf("read %s header: %w", format, err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return Info{}, fmt.Errorf("%dx%d %s: %w", cfg.Width, cfg.Height, format, ErrTooLarge)
	}

	return Info{Format: format, Width: cfg.Width, Height: cfg.Height, Size: len(data)}, nil
}

func detectFormat(data []byte) (Format, error) {
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("image/jpeg"):
		return JPEG, nil
	case mime.Is("image/png"):
		return PNG, nil
	case mime.Is("image/webp"):
		return WebP, nil
	case mime.Is("image/gif"):
		return GIF, nil
	}
	return "", fmt.Errorf("unsupported content type %s", mime.String())
}

// decode checks the header before allocating any pixels.
func decode(data []byte) (image.Image, Format, error) {
	info, err := Inspect(data)
	if err != nil {
		return nil, "", err
	}
	format := info.Format

	var img image.Image
	if format == WebP {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", format, err)
	}

	return img, format, nil
}

func encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case JPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case PNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	case GIF:
		err = imaging.Encode(&buf, img, imaging.GIF, imaging.GIFNumColors(GIFColors))
	case WebP:
		err = webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality})
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return buf.Bytes(), nil
}
