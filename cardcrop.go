// Package cardcrop frames user images for printable cards.
//
// Two paths lead to the same 2:3 output. An interactive edit session lets the
// user pan and zoom an image inside a fixed viewport and exports exactly what
// the preview shows. The cover crop handles images nobody framed by hand: it
// scales and centre-crops them to fill the card.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//		"os"
//
//		"github.com/cvegam02/chorroybuenas-sub001"
//		"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
//	)
//
//	func main() {
//		f, err := os.Open("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer f.Close()
//
//		// Scale and centre-crop to the 800x1200 card
//		res, err := cardcrop.CoverCropCardReader(f, cardcrop.DefaultQuality)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := os.WriteFile("card.jpg", res.Data, 0644); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package is a thin facade over:
//
// 1. Editor (pkg/editor): the session handle driven by pan, zoom and pointer events
// 2. Transform (pkg/transform): scale and offset math with clamping
// 3. Gesture (pkg/gesture): mouse, wheel and touch normalisation
// 4. Render (pkg/render): preview and export rasterisation
// 5. Cropper (pkg/cropper): the unattended cover crop
package cardcrop

import (
	"context"
	"image"
	"io"
	"log/slog"

	"github.com/cvegam02/chorroybuenas-sub001/internal/logging"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/cropper"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/editor"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Version of the cardcrop library
const Version = "1.0.0"

// DefaultQuality is the JPEG quality used for interactive crops.
const DefaultQuality = editor.DefaultQuality

// CardWidth and CardHeight are the default cover crop target.
const (
	CardWidth  = 800
	CardHeight = 1200
)

// BeginEditSession starts an interactive crop of img inside viewport.
func BeginEditSession(img image.Image, viewport types.Size, config editor.Config) (*editor.Session, error) {
	return editor.Begin(img, viewport, config)
}

// LoadEditSession decodes r and starts a session once decoding completes.
// A cancelled ctx abandons the decode.
func LoadEditSession(ctx context.Context, r io.Reader, viewport types.Size, config editor.Config) (*editor.Session, error) {
	return editor.Load(ctx, r, viewport, config)
}

// CoverCrop scales and centre-crops img to fill width x height and encodes it
// as JPEG at quality in [0,1].
func CoverCrop(img image.Image, width, height int, quality float64) (types.CropResult, error) {
	return cropper.New().CoverCrop(img, width, height, quality)
}

// CoverCropCard cover-crops img to the default 800x1200 card.
func CoverCropCard(img image.Image, quality float64) (types.CropResult, error) {
	return CoverCrop(img, CardWidth, CardHeight, quality)
}

// CoverCropCardReader decodes r and cover-crops it to the default card.
func CoverCropCardReader(r io.Reader, quality float64) (types.CropResult, error) {
	return cropper.New().CoverCropReader(r, CardWidth, CardHeight, quality)
}

// SetLogger routes library diagnostics to l. Passing nil silences them again.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
