package types

import "math"

// Size is a width/height pair in logical pixels. It describes both the
// natural size of a source image and the viewport frame.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Degenerate reports whether either axis is zero, negative or NaN.
func (s Size) Degenerate() bool {
	return !(s.Width > 0) || !(s.Height > 0)
}

// AspectRatio returns Width/Height, or 0 for a degenerate size.
func (s Size) AspectRatio() float64 {
	if s.Degenerate() {
		return 0
	}
	return s.Width / s.Height
}

// Scaled returns the size multiplied by f on both axes.
func (s Size) Scaled(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// Pixels returns the integer pixel dimensions covering the size, rounding up.
func (s Size) Pixels() (int, int) {
	return int(math.Ceil(s.Width - 1e-9)), int(math.Ceil(s.Height - 1e-9))
}

// Point is a position in viewport coordinates (origin top-left, logical pixels).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with float coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TransformState is the scale and translation of one edit session.
// Offsets are measured from the centred position of the scaled image.
type TransformState struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Format names an output encoding.
type Format string

const (
	JPEG Format = "jpg"
	PNG  Format = "png"
	WebP Format = "webp"
)

// CropResult is an encoded raster produced by a commit or a cover crop.
// Data is owned by the caller.
type CropResult struct {
	Data    []byte  `json:"-"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Quality float64 `json:"quality"`
	Format  Format  `json:"format"`
}
