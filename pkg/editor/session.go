// Package editor exposes one interactive crop session: the handle the host UI
// drives with pan, zoom and pointer events until it commits or cancels.
//
// A Session is not safe for concurrent use. After Commit succeeds or Cancel is
// called every method that changes state returns types.ErrSessionClosed.
package editor

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/cvegam02/chorroybuenas-sub001/internal/logging"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/gesture"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/render"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/source"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/transform"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// DefaultQuality is the JPEG quality used for interactive crops.
const DefaultQuality = 0.85

// Config holds the per-session options
type Config struct {
	Limits           transform.Limits
	DevicePixelRatio float64
	MaxSurfacePixels int
	Frame            render.FrameStyle
	Format           types.Format
	// LivePreview keeps an internal surface re-rendered after every change.
	LivePreview bool
	// Origin is the viewport's top-left corner in pointer event coordinates.
	Origin types.Point
}

// DefaultConfig returns the stock session options
func DefaultConfig() Config {
	return Config{
		Limits:           transform.DefaultLimits(),
		DevicePixelRatio: 1,
		MaxSurfacePixels: render.DefaultMaxPixels,
		Frame:            render.DefaultFrameStyle(),
		Format:           types.JPEG,
	}
}

// Session is one transient edit of one source image.
type Session struct {
	src      *source.Image
	model    transform.Model
	state    types.TransformState
	config   Config
	gestures *gesture.Normalizer
	renderer *render.Renderer
	exporter *render.Exporter
	surface  *render.Surface
	fitted   bool
	closed   bool
}

// Begin starts a session for an already decoded image.
func Begin(img image.Image, viewport types.Size, config Config) (*Session, error) {
	src, err := source.FromImage(img)
	if err != nil {
		return nil, err
	}
	return BeginWithSource(src, viewport, config)
}

// BeginWithSource starts a session for a loaded source.
func BeginWithSource(src *source.Image, viewport types.Size, config Config) (*Session, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", types.ErrDecodeFailure)
	}
	if config.Limits == (transform.Limits{}) {
		config.Limits = transform.DefaultLimits()
	}
	if err := config.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid zoom limits: %w", err)
	}
	if !(config.DevicePixelRatio > 0) {
		config.DevicePixelRatio = 1
	}

	s := &Session{
		src:      src,
		model:    transform.NewModel(src.Size(), viewport, config.Limits),
		config:   config,
		gestures: gesture.NewNormalizer(config.Origin, config.Limits.ZoomStep),
		renderer: render.NewRendererWithStyle(config.Frame),
		exporter: render.NewExporterWithConfig(render.ExportConfig{
			DevicePixelRatio: config.DevicePixelRatio,
			MaxPixels:        config.MaxSurfacePixels,
			Format:           config.Format,
		}),
	}
	s.state = s.model.Initialize()
	s.fitted = !viewport.Degenerate()

	if err := s.refresh(); err != nil {
		return nil, err
	}

	logging.Logger().Debug("edit session started",
		"image_width", src.Size().Width, "image_height", src.Size().Height,
		"viewport_width", viewport.Width, "viewport_height", viewport.Height,
		"scale", s.state.Scale)
	return s, nil
}

// Load decodes r in the background and starts a session once it completes.
// If ctx ends first Load returns ctx.Err() and the late decode is dropped.
func Load(ctx context.Context, r io.Reader, viewport types.Size, config Config) (*Session, error) {
	type decoded struct {
		src *source.Image
		err error
	}
	done := make(chan decoded, 1)
	go func() {
		src, err := source.New().Decode(r)
		done <- decoded{src: src, err: err}
	}()

	select {
	case <-ctx.Done():
		logging.Logger().Debug("decode abandoned", "error", ctx.Err())
		return nil, ctx.Err()
	case d := <-done:
		if d.err != nil {
			return nil, d.err
		}
		return BeginWithSource(d.src, viewport, config)
	}
}

// State returns a copy of the current transform.
func (s *Session) State() types.TransformState { return s.state }

// Viewport returns the current viewport size.
func (s *Session) Viewport() types.Size { return s.model.Viewport }

// ImageSize returns the natural size of the source image.
func (s *Session) ImageSize() types.Size { return s.model.Image }

// Limits returns the zoom limits of the session.
func (s *Session) Limits() transform.Limits { return s.model.Limits }

// Active reports whether the session still accepts input.
func (s *Session) Active() bool { return !s.closed }

// Pan moves the image by (dx, dy) viewport pixels.
func (s *Session) Pan(dx, dy float64) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	s.apply(s.model.Pan(s.state, dx, dy))
	return nil
}

// Zoom adds delta to the scale. A non-nil anchor keeps the image point under
// it fixed; otherwise the zoom is about the viewport centre.
func (s *Session) Zoom(delta float64, anchor *types.Point) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	s.apply(s.model.SetScale(s.state, s.state.Scale+delta, anchor))
	return nil
}

// SetScale sets an absolute scale, optionally about anchor.
func (s *Session) SetScale(scale float64, anchor *types.Point) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	s.apply(s.model.SetScale(s.state, scale, anchor))
	return nil
}

// HandlePointerEvent feeds one raw mouse, wheel or touch event through the
// gesture normalizer.
func (s *Session) HandlePointerEvent(ev gesture.Event) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	d, ok := s.gestures.Handle(ev, s.state.Scale)
	if !ok {
		return nil
	}

	switch d.Kind {
	case gesture.Pan:
		s.apply(s.model.Pan(s.state, d.DX, d.DY))
	case gesture.Scale:
		s.apply(s.model.SetScale(s.state, d.Scale, d.Anchor))
	case gesture.Step:
		s.apply(s.model.ZoomBy(s.state, d.Step))
	}
	return nil
}

// SetOrigin updates where the viewport sits in pointer event coordinates.
func (s *Session) SetOrigin(origin types.Point) {
	s.gestures.SetOrigin(origin)
}

// SetViewport records a new layout size. The first valid size after a
// degenerate start runs the initial contain fit; later sizes only reclamp.
func (s *Session) SetViewport(viewport types.Size) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	s.model.Viewport = viewport
	if !s.fitted && !viewport.Degenerate() {
		s.state = s.model.Initialize()
		s.fitted = true
	} else {
		s.state = s.model.Clamp(s.state)
	}
	if viewport.Degenerate() {
		s.surface = nil
		return nil
	}
	return s.refresh()
}

// Render draws the current state into a caller-owned surface allocated for
// the session viewport.
func (s *Session) Render(surface *render.Surface) error {
	if s.closed {
		return types.ErrSessionClosed
	}
	if surface == nil {
		return fmt.Errorf("%w: nil surface", types.ErrSurfaceUnavailable)
	}
	if surface.Viewport() != s.model.Viewport {
		return fmt.Errorf("surface viewport %vx%v does not match session viewport %vx%v",
			surface.Viewport().Width, surface.Viewport().Height, s.model.Viewport.Width, s.model.Viewport.Height)
	}
	s.renderer.Render(surface, s.src, s.state)
	return nil
}

// Preview returns the live preview raster, or nil when live preview is off,
// the viewport is degenerate or the session has ended.
func (s *Session) Preview() *image.RGBA {
	if s.surface == nil {
		return nil
	}
	return s.surface.Image()
}

// Commit exports the framed crop at quality in [0,1] and ends the session.
// On error the session stays open and its state is unchanged.
func (s *Session) Commit(quality float64) (types.CropResult, error) {
	if s.closed {
		return types.CropResult{}, types.ErrSessionClosed
	}
	if s.model.Viewport.Degenerate() {
		return types.CropResult{}, types.ErrDegenerateViewport
	}

	res, err := s.exporter.Export(s.src, s.state, s.model.Viewport, quality)
	if err != nil {
		return types.CropResult{}, fmt.Errorf("commit failed: %w", err)
	}

	s.end()
	logging.Logger().Debug("edit session committed",
		"scale", s.state.Scale, "offset_x", s.state.OffsetX, "offset_y", s.state.OffsetY,
		"bytes", len(res.Data))
	return res, nil
}

// Cancel ends the session without output. It is safe to call more than once.
func (s *Session) Cancel() {
	if s.closed {
		return
	}
	s.end()
	logging.Logger().Debug("edit session cancelled")
}

func (s *Session) end() {
	s.closed = true
	s.gestures.Reset()
	s.surface = nil
}

func (s *Session) apply(st types.TransformState) {
	s.state = st
	if err := s.refresh(); err != nil {
		logging.Logger().Warn("preview not rendered", "error", err)
	}
}

// refresh re-renders the live preview, reallocating the surface when the
// viewport changed.
func (s *Session) refresh() error {
	if !s.config.LivePreview || s.model.Viewport.Degenerate() {
		return nil
	}
	if !s.surface.Matches(s.model.Viewport, s.config.DevicePixelRatio) {
		surface, err := render.NewSurface(s.model.Viewport, s.config.DevicePixelRatio, s.config.MaxSurfacePixels)
		if err != nil {
			s.surface = nil
			return err
		}
		s.surface = surface
	}
	s.renderer.Render(s.surface, s.src, s.state)
	return nil
}
