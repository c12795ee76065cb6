// Package source decodes and validates the images handed to an edit session.
package source

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Image is a decoded source image. The raster is normalised to NRGBA with a
// zero origin and is never modified after load.
type Image struct {
	raster *image.NRGBA
	format string
}

// Size returns the natural pixel size of the image.
func (i *Image) Size() types.Size {
	b := i.raster.Bounds()
	return types.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Raster returns the decoded pixels. Callers must treat it as read-only.
func (i *Image) Raster() image.Image {
	return i.raster
}

// Format returns the name of the decoder that produced the image, or "" for
// images created with FromImage.
func (i *Image) Format() string {
	return i.format
}

// FromImage wraps an already decoded image, copying it into an NRGBA raster.
func FromImage(img image.Image) (*Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", types.ErrDecodeFailure)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", types.ErrDecodeFailure, b.Dx(), b.Dy())
	}
	return &Image{raster: imaging.Clone(img)}, nil
}

// Config holds configuration for source loading
type Config struct {
	SupportedFormats []string
	MinImageSize     int
}

// Loader decodes and validates source images.
type Loader struct {
	config Config
}

// New creates a new Loader with default configuration
func New() *Loader {
	return &Loader{
		config: Config{
			SupportedFormats: []string{"jpeg", "png", "gif", "webp"},
			MinImageSize:     1,
		},
	}
}

// NewWithConfig creates a new Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	return &Loader{config: config}
}

// Decode reads and decodes an image, applying EXIF orientation. Every failure
// wraps types.ErrDecodeFailure.
func (l *Loader) Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %v", types.ErrDecodeFailure, err)
	}
	return l.DecodeBytes(data)
}

// DecodeBytes decodes an in-memory encoded image.
func (l *Loader) DecodeBytes(data []byte) (*Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		// x/image/webp does not cover every variant; try the libwebp decoder.
		img, werr := webp.Decode(bytes.NewReader(data))
		if werr != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
		}
		return l.finish(img, "webp")
	}

	if !l.isFormatSupported(format) {
		return nil, fmt.Errorf("%w: unsupported image format: %s", types.ErrDecodeFailure, format)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
	}
	return l.finish(img, format)
}

func (l *Loader) finish(img image.Image, format string) (*Image, error) {
	if err := l.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDecodeFailure, err)
	}
	src, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	src.format = format
	return src, nil
}

// GetImageInfo returns basic information about an image
func (l *Loader) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

func (l *Loader) isFormatSupported(format string) bool {
	for _, supported := range l.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (l *Loader) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	minSize := l.config.MinImageSize
	if minSize < 1 {
		minSize = 1
	}
	if bounds.Dx() < minSize || bounds.Dy() < minSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), minSize)
	}
	return nil
}
