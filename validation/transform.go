package validation

import (
	"github.com/krishkalaria12/imagehost/transform"
)

type transformInput struct {
	Resize  *resizeInput  `json:"resize"`
	Crop    *cropInput    `json:"crop"`
	Rotate  *int          `json:"rotate" validate:"omitempty,min=-360,max=360"`
	Format  *string       `json:"format" validate:"omitempty,oneof=jpeg png webp gif"`
	Filters *filtersInput `json:"filters"`
	Flip    bool          `json:"flip"`
	Flop    bool          `json:"flop"`
}

type resizeInput struct {
	Width  *int `json:"width" validate:"omitempty,gt=0"`
	Height *int `json:"height" validate:"omitempty,gt=0"`
}

type cropInput struct {
	X      *int `json:"x" validate:"required,min=0"`
	Y      *int `json:"y" validate:"required,min=0"`
	Width  *int `json:"width" validate:"required,gt=0"`
	Height *int `json:"height" validate:"required,gt=0"`
}

type filtersInput struct {
	Grayscale bool     `json:"grayscale"`
	Sepia     bool     `json:"sepia"`
	Blur      *float64 `json:"blur" validate:"omitempty,min=0.3,max=1000"`
	Sharpen   bool     `json:"sharpen"`
}

// Transform parses a transformation body. Ranges are checked here; whether
// the request fits the actual image is left to the pipeline.
func Transform(body []byte) (transform.Request, error) {
	var in transformInput
	decoded, err := decode(body, &in)
	if err != nil {
		return transform.Request{}, err
	}

	if err := check(&in, decoded, nil); err != nil {
		return transform.Request{}, err
	}

	return in.request(), nil
}

func (in transformInput) request() transform.Request {
	req := transform.Request{
		Rotate: in.Rotate,
		Flip:   in.Flip,
		Flop:   in.Flop,
	}

	if in.Resize != nil {
		req.Resize = &transform.Resize{Width: in.Resize.Width, Height: in.Resize.Height}
	}
	if in.Crop != nil {
		req.Crop = &transform.Crop{X: *in.Crop.X, Y: *in.Crop.Y, Width: *in.Crop.Width, Height: *in.Crop.Height}
	}
	if in.Format != nil {
		// oneof already restricted the value
		f, _ := transform.ParseFormat(*in.Format)
		req.Format = &f
	}
	if in.Filters != nil {
		req.Filters = &transform.Filters{
			Grayscale: in.Filters.Grayscale,
			Sepia:     in.Filters.Sepia,
			Blur:      in.Filters.Blur,
			Sharpen:   in.Filters.Sharpen,
		}
	}

	return req
}
