// Package render draws an edit session into a preview surface and exports the
// committed crop.
//
// Preview and export share Layout and paint, so for the same source, state and
// viewport both produce the same pixels inside the frame. The preview only adds
// the frame outline on top.
package render

import (
	"image/color"

	"github.com/fogleman/gg"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/source"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Background fills any part of the frame the image does not cover.
var Background = color.White

// Layout returns where the scaled image lands in viewport coordinates: centred,
// then shifted by the state's offset.
func Layout(img types.Size, st types.TransformState, viewport types.Size) types.Rect {
	w := img.Width * st.Scale
	h := img.Height * st.Scale
	return types.Rect{
		X:      (viewport.Width-w)/2 + st.OffsetX,
		Y:      (viewport.Height-h)/2 + st.OffsetY,
		Width:  w,
		Height: h,
	}
}

// paint clears dc to Background and draws src at its Layout position. dc must
// be backed by a raster of viewport*dpr pixels.
func paint(dc *gg.Context, src *source.Image, st types.TransformState, viewport types.Size, dpr float64) {
	dc.Identity()
	dc.SetColor(Background)
	dc.Clear()

	p := Layout(src.Size(), st, viewport)
	dc.Push()
	dc.Scale(dpr, dpr)
	dc.Translate(p.X, p.Y)
	dc.Scale(st.Scale, st.Scale)
	dc.DrawImage(src.Raster(), 0, 0)
	dc.Pop()
}
