// Package transform applies an ordered set of image operations to an
// encoded image and re-encodes the result.
//
// Steps always run as resize, crop, rotate, flip, flop, grayscale, sepia,
// blur, sharpen and finally encode, whatever order the request was written in.
package transform

import (
	"errors"

	"github.com/krishkalaria12/imagehost/apperror"
)

type Pipeline struct{}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Apply runs req against src. src is never modified. Geometric failures are
// returned as processing errors. A source that cannot be decoded is an
// internal error since only validated uploads are stored.
func (p *Pipeline) Apply(src []byte, req Request) (*Result, error) {
	img, format, err := decode(src)
	if errors.Is(err, ErrTooLarge) {
		return nil, apperror.Processing(processingMessage(err), err)
	}
	if err != nil {
		return nil, apperror.Internal("Unable to decode stored image.", err)
	}

	for _, s := range steps(req) {
		img, err = s.run(img)
		if err != nil {
			return nil, apperror.Processing(processingMessage(err), err)
		}
	}

	if req.Format != nil {
		format = *req.Format
	}

	data, err := encode(img, format)
	if err != nil {
		return nil, apperror.Internal("Failed to encode image.", err)
	}

	b := img.Bounds()
	return &Result{
		Data: data,
		Metadata: Metadata{
			Format: format,
			Width:  b.Dx(),
			Height: b.Dy(),
			Size:   len(data),
		},
	}, nil
}

func processingMessage(err error) string {
	switch {
	case errors.Is(err, ErrCropOutOfBounds):
		return "Crop area is outside the image bounds."
	case errors.Is(err, ErrTooLarge):
		return "Requested output dimensions are too large."
	default:
		return "Unable to process image."
	}
}
