package gesture

import (
	"fmt"
	"strings"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Kind is the phase of a pointer event.
type Kind int

const (
	Down Kind = iota
	Move
	Up
	Cancel
	Leave
	Wheel
)

var kindNames = [...]string{"down", "move", "up", "cancel", "leave", "wheel"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for i, n := range kindNames {
		if n == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown event kind %q", string(b))
}

// Device is the input modality that produced an event.
type Device int

const (
	Mouse Device = iota
	Touch
)

func (d Device) String() string {
	switch d {
	case Mouse:
		return "mouse"
	case Touch:
		return "touch"
	}
	return fmt.Sprintf("device(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Device) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Device) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "mouse":
		*d = Mouse
	case "touch":
		*d = Touch
	default:
		return fmt.Errorf("unknown device %q", string(b))
	}
	return nil
}

// Event is one raw pointer event in client coordinates. ID distinguishes
// simultaneous touches and is ignored for the mouse. DeltaY is only read for
// Wheel events; positive values scroll down.
type Event struct {
	Kind   Kind    `json:"kind"`
	Device Device  `json:"device"`
	ID     int     `json:"id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"delta_y,omitempty"`
}

// DeltaKind selects which transform operation a Delta maps to.
type DeltaKind int

const (
	// Pan translates by (DX, DY).
	Pan DeltaKind = iota
	// Scale sets an absolute scale, optionally around Anchor.
	Scale
	// Step adds Step to the current scale without an anchor.
	Step
)

// Delta is the modality-independent output of the normalizer. Every input
// type reduces to one of these, so clamping lives only in the transform model.
type Delta struct {
	Kind   DeltaKind
	DX, DY float64
	Scale  float64
	Step   float64
	Anchor *types.Point
}
