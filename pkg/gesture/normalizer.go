// Package gesture turns raw mouse, wheel and touch events into transform deltas.
//
// Tracking state for one interaction lives in a Session that is created on the
// first pointer down and dropped when the last pointer lifts, so nothing leaks
// from one drag or pinch into the next.
package gesture

import (
	"math"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// pointer tracks one active mouse button or touch.
type pointer struct {
	start types.Point
	last  types.Point
}

// pinch is the snapshot taken when a second touch lands.
type pinch struct {
	ids         [2]int
	initialDist float64
	center      types.Point
	scale0      float64
}

// Session is the transient state of one pointer interaction.
type Session struct {
	device   Device
	pointers map[int]*pointer
	order    []int
	pinch    *pinch
}

func newSession(device Device) *Session {
	return &Session{device: device, pointers: make(map[int]*pointer)}
}

// Device returns the modality that owns the session.
func (s *Session) Device() Device { return s.device }

// PointerCount returns the number of pointers currently down.
func (s *Session) PointerCount() int { return len(s.order) }

// Pinching reports whether a two-touch pinch is in progress.
func (s *Session) Pinching() bool { return s.pinch != nil }

func (s *Session) add(id int, p types.Point) {
	if ptr, ok := s.pointers[id]; ok {
		ptr.start, ptr.last = p, p
		return
	}
	s.pointers[id] = &pointer{start: p, last: p}
	s.order = append(s.order, id)
}

func (s *Session) remove(id int) {
	delete(s.pointers, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Session) startPinch(scale float64) {
	a, b := s.pointers[s.order[0]], s.pointers[s.order[1]]
	s.pinch = &pinch{
		ids:         [2]int{s.order[0], s.order[1]},
		initialDist: distance(a.last, b.last),
		center:      midpoint(a.last, b.last),
		scale0:      scale,
	}
}

func (s *Session) inPinch(id int) bool {
	return s.pinch != nil && (s.pinch.ids[0] == id || s.pinch.ids[1] == id)
}

// Normalizer converts events into Deltas. It is not safe for concurrent use.
type Normalizer struct {
	origin   types.Point
	zoomStep float64
	session  *Session
}

// NewNormalizer creates a normalizer for a viewport whose top-left corner sits
// at origin in client coordinates.
func NewNormalizer(origin types.Point, zoomStep float64) *Normalizer {
	return &Normalizer{origin: origin, zoomStep: zoomStep}
}

// SetOrigin moves the viewport origin, e.g. after a layout change.
func (n *Normalizer) SetOrigin(origin types.Point) { n.origin = origin }

// Session returns the live interaction, or nil when no pointer is down.
func (n *Normalizer) Session() *Session { return n.session }

// Reset drops any live interaction.
func (n *Normalizer) Reset() { n.session = nil }

// Handle consumes one event. currentScale is the scale of the transform the
// deltas will be applied to; it seeds the pinch snapshot. The boolean result
// is false when the event produces no transform change.
func (n *Normalizer) Handle(ev Event, currentScale float64) (Delta, bool) {
	if ev.Kind == Wheel {
		return n.wheel(ev)
	}

	p := types.Point{X: ev.X - n.origin.X, Y: ev.Y - n.origin.Y}
	if n.session != nil && n.session.device != ev.Device {
		// A second modality cannot join an interaction in progress.
		return Delta{}, false
	}

	switch ev.Device {
	case Mouse:
		return n.mouse(ev.Kind, p)
	case Touch:
		return n.touch(ev.Kind, ev.ID, p, currentScale)
	}
	return Delta{}, false
}

func (n *Normalizer) wheel(ev Event) (Delta, bool) {
	switch {
	case ev.DeltaY > 0:
		return Delta{Kind: Step, Step: -n.zoomStep}, true
	case ev.DeltaY < 0:
		return Delta{Kind: Step, Step: n.zoomStep}, true
	}
	return Delta{}, false
}

func (n *Normalizer) mouse(kind Kind, p types.Point) (Delta, bool) {
	switch kind {
	case Down:
		n.session = newSession(Mouse)
		n.session.add(0, p)
	case Move:
		if n.session == nil {
			return Delta{}, false
		}
		return n.drag(0, p)
	case Up, Leave, Cancel:
		n.session = nil
	}
	return Delta{}, false
}

func (n *Normalizer) touch(kind Kind, id int, p types.Point, scale float64) (Delta, bool) {
	switch kind {
	case Down:
		if n.session == nil {
			n.session = newSession(Touch)
		}
		n.session.add(id, p)
		if n.session.pinch == nil && n.session.PointerCount() >= 2 {
			n.session.startPinch(scale)
		}
	case Move:
		if n.session == nil {
			return Delta{}, false
		}
		if _, ok := n.session.pointers[id]; !ok {
			return Delta{}, false
		}
		if n.session.inPinch(id) {
			n.session.pointers[id].last = p
			return n.pinchDelta(), true
		}
		if n.session.pinch != nil || n.session.PointerCount() != 1 {
			n.session.pointers[id].last = p
			return Delta{}, false
		}
		return n.drag(id, p)
	case Up, Cancel:
		if n.session == nil {
			return Delta{}, false
		}
		wasPinched := n.session.inPinch(id)
		n.session.remove(id)
		switch count := n.session.PointerCount(); {
		case count == 0:
			n.session = nil
		case count == 1:
			// Resume dragging from where the surviving finger is now.
			n.session.pinch = nil
			survivor := n.session.pointers[n.session.order[0]]
			survivor.start = survivor.last
		case wasPinched:
			n.session.startPinch(scale)
		}
	}
	return Delta{}, false
}

func (n *Normalizer) drag(id int, p types.Point) (Delta, bool) {
	ptr := n.session.pointers[id]
	d := Delta{Kind: Pan, DX: p.X - ptr.last.X, DY: p.Y - ptr.last.Y}
	ptr.last = p
	return d, true
}

// pinchDelta recomputes the scale from the snapshot taken at pinch start,
// anchored at the initial pinch centre.
func (n *Normalizer) pinchDelta() Delta {
	pn := n.session.pinch
	a, b := n.session.pointers[pn.ids[0]], n.session.pointers[pn.ids[1]]

	ratio := 1.0
	if pn.initialDist > 0 {
		ratio = distance(a.last, b.last) / pn.initialDist
	}
	anchor := pn.center
	return Delta{Kind: Scale, Scale: pn.scale0 * ratio, Anchor: &anchor}
}

func distance(a, b types.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func midpoint(a, b types.Point) types.Point {
	return types.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
