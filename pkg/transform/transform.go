// Package transform holds the pure scale/offset math of an edit session.
//
// A Model bundles the constants of one session (image size, viewport size and
// zoom limits). Every operation takes a TransformState by value and returns a
// new one with both invariants re-applied:
//
//   - Limits.MinScale <= Scale <= Limits.MaxScale
//   - on each axis, a scaled image at least as large as the frame may move by
//     at most half the overflow; a smaller one is pinned to the centre.
//
// Updates are clamped, never rejected, so no operation here returns an error.
package transform

import (
	"fmt"
	"math"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Limits bounds the zoom of a session.
type Limits struct {
	MinScale float64 `json:"min_scale" toml:"min_scale"`
	MaxScale float64 `json:"max_scale" toml:"max_scale"`
	ZoomStep float64 `json:"zoom_step" toml:"zoom_step"`
}

// DefaultLimits returns the stock limits: 0.1x to 3x in steps of 0.1.
func DefaultLimits() Limits {
	return Limits{
		MinScale: 0.1,
		MaxScale: 3.0,
		ZoomStep: 0.1,
	}
}

// Validate checks that the limits describe a usable, non-empty range.
func (l Limits) Validate() error {
	if !(l.MinScale > 0) {
		return fmt.Errorf("min scale must be positive, got %v", l.MinScale)
	}
	if !(l.MaxScale >= l.MinScale) {
		return fmt.Errorf("max scale %v is below min scale %v", l.MaxScale, l.MinScale)
	}
	if !(l.ZoomStep > 0) {
		return fmt.Errorf("zoom step must be positive, got %v", l.ZoomStep)
	}
	return nil
}

// ClampScale pins s into [MinScale, MaxScale]. NaN maps to MinScale.
func (l Limits) ClampScale(s float64) float64 {
	if !(s >= l.MinScale) {
		return l.MinScale
	}
	if s > l.MaxScale {
		return l.MaxScale
	}
	return s
}

// Model is the fixed geometry of one edit session.
type Model struct {
	Image    types.Size
	Viewport types.Size
	Limits   Limits
}

// NewModel creates a Model, substituting DefaultLimits for zero limits.
func NewModel(img, viewport types.Size, limits Limits) Model {
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	return Model{Image: img, Viewport: viewport, Limits: limits}
}

// Initialize returns the contain-fit state: the whole image visible, fitted by
// its constraining axis and centred. A degenerate viewport yields scale 1
// (clamped) until a real size is observed.
func (m Model) Initialize() types.TransformState {
	if m.Viewport.Degenerate() || m.Image.Degenerate() {
		return types.TransformState{Scale: m.Limits.ClampScale(1)}
	}

	var scale float64
	if m.Image.AspectRatio() > m.Viewport.AspectRatio() {
		scale = m.Viewport.Height / m.Image.Height
	} else {
		scale = m.Viewport.Width / m.Image.Width
	}
	return types.TransformState{Scale: m.Limits.ClampScale(scale)}
}

// SetScale changes the scale. With a non-nil anchor (viewport coordinates) the
// image point under the anchor stays under it; without one the offset is kept
// and only reclamped, which zooms around the viewport centre.
func (m Model) SetScale(st types.TransformState, scale float64, anchor *types.Point) types.TransformState {
	scale = m.Limits.ClampScale(scale)
	if anchor == nil || !(st.Scale > 0) {
		st.Scale = scale
		return m.Clamp(st)
	}

	pinned := m.ViewportToImage(st, *anchor)
	next := types.TransformState{Scale: scale}
	next.OffsetX = anchor.X - pinned.X*scale - (m.Viewport.Width-m.Image.Width*scale)/2
	next.OffsetY = anchor.Y - pinned.Y*scale - (m.Viewport.Height-m.Image.Height*scale)/2
	return m.Clamp(next)
}

// ZoomBy adds delta to the current scale without an anchor.
func (m Model) ZoomBy(st types.TransformState, delta float64) types.TransformState {
	return m.SetScale(st, st.Scale+delta, nil)
}

// Pan translates the image by (dx, dy) viewport pixels.
func (m Model) Pan(st types.TransformState, dx, dy float64) types.TransformState {
	st.OffsetX += dx
	st.OffsetY += dy
	return m.Clamp(st)
}

// Clamp re-applies the scale and offset invariants to st.
func (m Model) Clamp(st types.TransformState) types.TransformState {
	st.Scale = m.Limits.ClampScale(st.Scale)
	st.OffsetX = clampOffset(st.OffsetX, m.Image.Width*st.Scale, m.Viewport.Width)
	st.OffsetY = clampOffset(st.OffsetY, m.Image.Height*st.Scale, m.Viewport.Height)
	return st
}

// MaxOffset returns the largest allowed |offset| on each axis for scale.
func (m Model) MaxOffset(scale float64) (float64, float64) {
	return maxOffset(m.Image.Width*scale, m.Viewport.Width),
		maxOffset(m.Image.Height*scale, m.Viewport.Height)
}

// ImageToViewport maps a point in image pixels to viewport coordinates.
func (m Model) ImageToViewport(st types.TransformState, p types.Point) types.Point {
	left, top := m.origin(st)
	return types.Point{X: left + p.X*st.Scale, Y: top + p.Y*st.Scale}
}

// ViewportToImage maps a viewport point to image pixels under st.
func (m Model) ViewportToImage(st types.TransformState, p types.Point) types.Point {
	left, top := m.origin(st)
	return types.Point{X: (p.X - left) / st.Scale, Y: (p.Y - top) / st.Scale}
}

// origin is the viewport position of the image's top-left corner.
func (m Model) origin(st types.TransformState) (float64, float64) {
	left := (m.Viewport.Width-m.Image.Width*st.Scale)/2 + st.OffsetX
	top := (m.Viewport.Height-m.Image.Height*st.Scale)/2 + st.OffsetY
	return left, top
}

func maxOffset(scaled, frame float64) float64 {
	return math.Max(0, (scaled-frame)/2)
}

func clampOffset(offset, scaled, frame float64) float64 {
	if scaled < frame || math.IsNaN(offset) {
		return 0
	}
	limit := maxOffset(scaled, frame)
	if offset > limit {
		return limit
	}
	if offset < -limit {
		return -limit
	}
	return offset
}
