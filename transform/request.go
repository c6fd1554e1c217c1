package transform

// Request is a validated bundle of optional operations. The zero value is a
// pass-through that only re-encodes.
type Request struct {
	Resize  *Resize  `json:"resize,omitempty"`
	Crop    *Crop    `json:"crop,omitempty"`
	Rotate  *int     `json:"rotate,omitempty"`
	Format  *Format  `json:"format,omitempty"`
	Filters *Filters `json:"filters,omitempty"`
	Flip    bool     `json:"flip,omitempty"`
	Flop    bool     `json:"flop,omitempty"`
}

type Resize struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Filters struct {
	Grayscale bool     `json:"grayscale,omitempty"`
	Sepia     bool     `json:"sepia,omitempty"`
	Blur      *float64 `json:"blur,omitempty"`
	Sharpen   bool     `json:"sharpen,omitempty"`
}

type Metadata struct {
	Format Format `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

type Result struct {
	Data     []byte
	Metadata Metadata
}
