package transform

import (
	"fmt"
	"strings"
)

type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WebP Format = "webp"
	GIF  Format = "gif"
)

// ParseFormat accepts jpeg, jpg, png, webp and gif. jpg is reported as jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	case "gif":
		return GIF, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

func (f Format) Extension() string {
	return string(f)
}

func (f Format) ContentType() string {
	return "image/" + string(f)
}

func (f Format) Valid() bool {
	switch f {
	case JPEG, PNG, WebP, GIF:
		return true
	}
	return false
}
