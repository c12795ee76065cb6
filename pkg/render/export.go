package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/cvegam02/chorroybuenas-sub001/internal/logging"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/processing"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/source"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// ExportConfig holds configuration for crop export
type ExportConfig struct {
	DevicePixelRatio float64
	MaxPixels        int
	Format           types.Format
}

// Exporter produces the final raster of an edit session.
type Exporter struct {
	config ExportConfig
}

// NewExporter creates an Exporter writing JPEG at 1x
func NewExporter() *Exporter {
	return &Exporter{config: ExportConfig{
		DevicePixelRatio: 1,
		MaxPixels:        DefaultMaxPixels,
		Format:           types.JPEG,
	}}
}

// NewExporterWithConfig creates an Exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	return &Exporter{config: config}
}

// Rasterize draws src under st into a fresh white surface of viewport*dpr
// pixels, using the same placement as Renderer.Render.
func (e *Exporter) Rasterize(src *source.Image, st types.TransformState, viewport types.Size) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", types.ErrDecodeFailure)
	}
	surface, err := NewSurface(viewport, e.config.DevicePixelRatio, e.config.MaxPixels)
	if err != nil {
		logging.Logger().Warn("export surface unavailable", "error", err)
		return nil, err
	}

	dc := gg.NewContextForRGBA(surface.img)
	paint(dc, src, st, viewport, surface.dpr)
	return surface.img, nil
}

// Export rasterizes and encodes the crop at quality in [0,1]. On error no
// result is returned.
func (e *Exporter) Export(src *source.Image, st types.TransformState, viewport types.Size, quality float64) (types.CropResult, error) {
	img, err := e.Rasterize(src, st, viewport)
	if err != nil {
		return types.CropResult{}, err
	}

	res, err := processing.EncodeResult(img, e.config.Format, quality)
	if err != nil {
		return types.CropResult{}, err
	}
	logging.Logger().Debug("exported crop",
		"width", res.Width, "height", res.Height, "bytes", len(res.Data), "format", res.Format)
	return res, nil
}
