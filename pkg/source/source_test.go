package source

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill with a gradient pattern
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(128)
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	loader := New()
	if loader == nil {
		t.Fatal("New() returned nil")
	}

	if loader.config.MinImageSize != 1 {
		t.Errorf("Expected default min size 1, got %d", loader.config.MinImageSize)
	}
}

func TestNewWithConfig(t *testing.T) {
	cfg := Config{
		SupportedFormats: []string{"png"},
		MinImageSize:     200,
	}

	loader := NewWithConfig(cfg)
	if loader.config.MinImageSize != 200 {
		t.Errorf("Expected min size 200, got %d", loader.config.MinImageSize)
	}
}

func TestFromImageNormalisesOrigin(t *testing.T) {
	base := createTestImage(40, 30).(*image.RGBA)
	sub := base.SubImage(image.Rect(10, 5, 30, 25))

	src, err := FromImage(sub)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}

	if b := src.Raster().Bounds(); b.Min != (image.Point{}) || b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("Expected 20x20 raster at origin, got %v", b)
	}
	if src.Size() != (types.Size{Width: 20, Height: 20}) {
		t.Errorf("Unexpected size %+v", src.Size())
	}

	r1, g1, b1, _ := base.At(10, 5).RGBA()
	r2, g2, b2, _ := src.Raster().At(0, 0).RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Error("Expected pixel (0,0) to match source pixel (10,5)")
	}
}

func TestFromImageRejectsEmpty(t *testing.T) {
	if _, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 10))); !errors.Is(err, types.ErrDecodeFailure) {
		t.Errorf("Expected ErrDecodeFailure, got %v", err)
	}
	if _, err := FromImage(nil); !errors.Is(err, types.ErrDecodeFailure) {
		t.Errorf("Expected ErrDecodeFailure for nil, got %v", err)
	}
}

func TestDecodePNG(t *testing.T) {
	loader := New()
	src, err := loader.DecodeBytes(encodePNG(t, createTestImage(64, 48)))
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}

	if src.Format() != "png" {
		t.Errorf("Expected format png, got %q", src.Format())
	}
	if src.Size().Width != 64 || src.Size().Height != 48 {
		t.Errorf("Expected 64x48, got %+v", src.Size())
	}
}

func TestDecodeJPEGFromReader(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(32, 32), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}

	src, err := New().Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Format() != "jpeg" {
		t.Errorf("Expected jpeg, got %q", src.Format())
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := New().Decode(strings.NewReader("definitely not an image"))
	if !errors.Is(err, types.ErrDecodeFailure) {
		t.Errorf("Expected ErrDecodeFailure, got %v", err)
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	loader := NewWithConfig(Config{SupportedFormats: []string{"jpeg"}, MinImageSize: 1})
	_, err := loader.DecodeBytes(encodePNG(t, createTestImage(8, 8)))
	if !errors.Is(err, types.ErrDecodeFailure) {
		t.Errorf("Expected ErrDecodeFailure, got %v", err)
	}
}

func TestDecodeTooSmall(t *testing.T) {
	loader := NewWithConfig(Config{SupportedFormats: []string{"png"}, MinImageSize: 100})
	_, err := loader.DecodeBytes(encodePNG(t, createTestImage(50, 50)))
	if !errors.Is(err, types.ErrDecodeFailure) {
		t.Errorf("Expected ErrDecodeFailure, got %v", err)
	}
}

func TestGetImageInfo(t *testing.T) {
	loader := New()
	info := loader.GetImageInfo(createTestImage(400, 300))

	if info.Width != 400 || info.Height != 300 {
		t.Errorf("Expected 400x300, got %dx%d", info.Width, info.Height)
	}

	expectedRatio := float64(400) / float64(300)
	if info.AspectRatio != expectedRatio {
		t.Errorf("Expected aspect ratio %f, got %f", expectedRatio, info.AspectRatio)
	}

	if info.Area != 120000 {
		t.Errorf("Expected area 120000, got %d", info.Area)
	}
}

func TestIsFormatSupported(t *testing.T) {
	loader := New()

	for _, format := range []string{"jpeg", "png", "PNG", "webp", "gif"} {
		if !loader.isFormatSupported(format) {
			t.Errorf("Format %s should be supported", format)
		}
	}

	for _, format := range []string{"bmp", "tiff"} {
		if loader.isFormatSupported(format) {
			t.Errorf("Format %s should not be supported", format)
		}
	}
}

func BenchmarkDecodeBytes(b *testing.B) {
	var buf bytes.Buffer
	_ = png.Encode(&buf, createTestImage(1920, 1080))
	data := buf.Bytes()
	loader := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = loader.DecodeBytes(data)
	}
}
