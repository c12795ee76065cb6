// Package cropper implements the unattended "cover" crop used for images the
// user never framed by hand.
package cropper

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/cvegam02/chorroybuenas-sub001/internal/logging"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/processing"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/source"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// CoverCropper scales and centre-crops images to fill a target size
type CoverCropper struct {
	loader *source.Loader
	config CropConfig
}

// CropConfig holds configuration for cover cropping
type CropConfig struct {
	Filter imaging.ResampleFilter
	Format types.Format
}

// AspectRatio represents a named target frame
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Ratio returns Width/Height.
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// Common target frames. Card is the default output of the upload and
// transform pipelines.
var (
	Card      = AspectRatio{800, 1200, "card"}
	Square    = AspectRatio{1080, 1080, "square"}
	Portrait  = AspectRatio{900, 1200, "portrait"}
	Landscape = AspectRatio{1200, 900, "landscape"}
	Thumbnail = AspectRatio{200, 300, "thumbnail"}
)

// CommonAspectRatios returns the predefined target frames
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Card, Square, Portrait, Landscape, Thumbnail}
}

// New creates a new CoverCropper with default configuration
func New() *CoverCropper {
	return &CoverCropper{
		loader: source.New(),
		config: CropConfig{
			Filter: imaging.Lanczos,
			Format: types.JPEG,
		},
	}
}

// NewWithConfig creates a new CoverCropper with custom configuration
func NewWithConfig(config CropConfig) *CoverCropper {
	if config.Format == "" {
		config.Format = types.JPEG
	}
	return &CoverCropper{
		loader: source.New(),
		config: config,
	}
}

// CoverRegion returns the source rectangle that, scaled to the target size,
// fills it exactly. A relatively wider source loses width, centred
// horizontally; otherwise it loses height, centred vertically.
func CoverRegion(srcW, srcH, targetW, targetH float64) types.Rect {
	r := targetW / targetH
	if srcW/srcH > r {
		w := srcH * r
		return types.Rect{X: (srcW - w) / 2, Y: 0, Width: w, Height: srcH}
	}
	h := srcW / r
	return types.Rect{X: 0, Y: (srcH - h) / 2, Width: srcW, Height: h}
}

// CoverImage returns img cover-fitted to exactly targetWidth x targetHeight over
// a white background. It never modifies img.
func (c *CoverCropper) CoverImage(img image.Image, targetWidth, targetHeight int) (*image.NRGBA, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", targetWidth, targetHeight)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", types.ErrDecodeFailure)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: invalid image dimensions", types.ErrDecodeFailure)
	}

	region := CoverRegion(float64(bounds.Dx()), float64(bounds.Dy()), float64(targetWidth), float64(targetHeight))
	cropped := imaging.Crop(img, regionToPixels(region, bounds))
	resized := imaging.Resize(cropped, targetWidth, targetHeight, c.config.Filter)

	canvas := imaging.New(targetWidth, targetHeight, color.White)
	return imaging.Overlay(canvas, resized, image.Pt(0, 0), 1.0), nil
}

// CoverCrop cover-fits img to targetWidth x targetHeight and encodes it at
// quality in [0,1].
func (c *CoverCropper) CoverCrop(img image.Image, targetWidth, targetHeight int, quality float64) (types.CropResult, error) {
	out, err := c.CoverImage(img, targetWidth, targetHeight)
	if err != nil {
		return types.CropResult{}, err
	}

	res, err := processing.EncodeResult(out, c.config.Format, quality)
	if err != nil {
		return types.CropResult{}, err
	}
	logging.Logger().Debug("cover crop",
		"source_width", img.Bounds().Dx(), "source_height", img.Bounds().Dy(),
		"target_width", targetWidth, "target_height", targetHeight, "bytes", len(res.Data))
	return res, nil
}

// CoverCropReader decodes an encoded image, honouring EXIF orientation, and
// cover-crops it.
func (c *CoverCropper) CoverCropReader(r io.Reader, targetWidth, targetHeight int, quality float64) (types.CropResult, error) {
	src, err := c.loader.Decode(r)
	if err != nil {
		return types.CropResult{}, err
	}
	return c.CoverCrop(src.Raster(), targetWidth, targetHeight, quality)
}

// CoverCropToAspectRatio cover-crops img to a named frame
func (c *CoverCropper) CoverCropToAspectRatio(img image.Image, ratio AspectRatio, quality float64) (types.CropResult, error) {
	return c.CoverCrop(img, ratio.Width, ratio.Height, quality)
}

// CoverCropMultiple cover-crops img to several frames
func (c *CoverCropper) CoverCropMultiple(img image.Image, ratios []AspectRatio, quality float64) ([]types.CropResult, error) {
	var results []types.CropResult

	for _, ratio := range ratios {
		result, err := c.CoverCropToAspectRatio(img, ratio, quality)
		if err != nil {
			return nil, fmt.Errorf("failed to crop to %s: %w", ratio.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// regionToPixels rounds a float region to whole source pixels inside bounds.
func regionToPixels(r types.Rect, bounds image.Rectangle) image.Rectangle {
	x0 := bounds.Min.X + int(math.Round(r.X))
	y0 := bounds.Min.Y + int(math.Round(r.Y))
	x1 := bounds.Min.X + int(math.Round(r.X+r.Width))
	y1 := bounds.Min.Y + int(math.Round(r.Y+r.Height))

	rect := image.Rect(x0, y0, x1, y1).Intersect(bounds)
	if rect.Dx() == 0 {
		rect.Max.X = rect.Min.X + 1
	}
	if rect.Dy() == 0 {
		rect.Max.Y = rect.Min.Y + 1
	}
	return rect
}
