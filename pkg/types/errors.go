package types

import "errors"

// Sentinel errors shared by the editing and cropping packages.
var (
	// ErrDecodeFailure is returned when a source image cannot be decoded.
	// A session is never created for such a source.
	ErrDecodeFailure = errors.New("image decode failed")

	// ErrSurfaceUnavailable is returned when a drawing surface cannot be
	// allocated. Nothing is drawn and session state is left unchanged.
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

	// ErrDegenerateViewport is returned by export paths while the viewport
	// has a zero width or height. Callers should retry once layout settles.
	ErrDegenerateViewport = errors.New("degenerate viewport")

	// ErrSessionClosed is returned for any input after Commit or Cancel.
	ErrSessionClosed = errors.New("edit session closed")
)
