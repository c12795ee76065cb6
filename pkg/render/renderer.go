package render

import (
	"github.com/fogleman/gg"

	"github.com/cvegam02/chorroybuenas-sub001/internal/logging"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/source"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// FrameStyle is the outline drawn around the crop region in the preview.
type FrameStyle struct {
	Color string  `json:"color" toml:"color"`
	Width float64 `json:"width" toml:"width"`
}

// DefaultFrameStyle returns a 2px dark grey outline.
func DefaultFrameStyle() FrameStyle {
	return FrameStyle{Color: "#333333", Width: 2}
}

// Renderer draws the live preview of an edit session.
type Renderer struct {
	frame FrameStyle
}

// NewRenderer creates a Renderer with the default frame style
func NewRenderer() *Renderer {
	return &Renderer{frame: DefaultFrameStyle()}
}

// NewRendererWithStyle creates a Renderer with a custom frame style
func NewRendererWithStyle(frame FrameStyle) *Renderer {
	return &Renderer{frame: frame}
}

// Render redraws the whole surface for st: background, image, then the frame
// outline. Identical inputs always yield identical pixels. A nil surface or
// source is a no-op.
func (r *Renderer) Render(surface *Surface, src *source.Image, st types.TransformState) {
	if surface == nil || src == nil || surface.viewport.Degenerate() {
		return
	}

	dc := gg.NewContextForRGBA(surface.img)
	paint(dc, src, st, surface.viewport, surface.dpr)
	r.drawFrame(dc, surface.viewport, surface.dpr)

	logging.Logger().Debug("rendered preview",
		"scale", st.Scale, "offset_x", st.OffsetX, "offset_y", st.OffsetY, "dpr", surface.dpr)
}

// drawFrame strokes the viewport bounds, inset by half the line width so the
// whole outline stays inside the surface.
func (r *Renderer) drawFrame(dc *gg.Context, viewport types.Size, dpr float64) {
	if !(r.frame.Width > 0) {
		return
	}
	w := r.frame.Width
	dc.Identity()
	dc.Scale(dpr, dpr)
	dc.DrawRectangle(w/2, w/2, viewport.Width-w, viewport.Height-w)
	dc.SetHexColor(r.frame.Color)
	// gg applies the line width in device pixels.
	dc.SetLineWidth(w * dpr)
	dc.Stroke()
	dc.Identity()
}
