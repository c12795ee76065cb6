package render

import (
	"fmt"
	"image"
	"math"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Canvas limits of common browsers; exceeding them fails allocation.
const (
	DefaultMaxPixels = 268435456
	MaxSide          = 32767
)

// Surface is a raster sized for a viewport at a device pixel ratio. All
// drawing coordinates stay logical; the DPR is applied when painting.
type Surface struct {
	img      *image.RGBA
	viewport types.Size
	dpr      float64
}

// NewSurface allocates a surface of ceil(viewport*dpr) pixels. A dpr <= 0 is
// treated as 1 and maxPixels <= 0 as DefaultMaxPixels.
func NewSurface(viewport types.Size, dpr float64, maxPixels int) (s *Surface, err error) {
	if viewport.Degenerate() {
		return nil, fmt.Errorf("%w: %vx%v", types.ErrDegenerateViewport, viewport.Width, viewport.Height)
	}
	if !(dpr > 0) {
		dpr = 1
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	fw, fh := math.Ceil(viewport.Width*dpr), math.Ceil(viewport.Height*dpr)
	if fw > MaxSide || fh > MaxSide || fw*fh > float64(maxPixels) {
		return nil, fmt.Errorf("%w: %vx%v pixels exceeds limit", types.ErrSurfaceUnavailable, fw, fh)
	}

	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %v", types.ErrSurfaceUnavailable, r)
		}
	}()
	img := image.NewRGBA(image.Rect(0, 0, int(fw), int(fh)))
	return &Surface{img: img, viewport: viewport, dpr: dpr}, nil
}

// Image returns the backing raster.
func (s *Surface) Image() *image.RGBA { return s.img }

// Viewport returns the logical size the surface represents.
func (s *Surface) Viewport() types.Size { return s.viewport }

// DevicePixelRatio returns the physical-to-logical pixel ratio.
func (s *Surface) DevicePixelRatio() float64 { return s.dpr }

// Matches reports whether the surface was allocated for viewport at dpr.
func (s *Surface) Matches(viewport types.Size, dpr float64) bool {
	return s != nil && s.viewport == viewport && s.dpr == dpr
}
