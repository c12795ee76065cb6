package processing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/cvegam02/chorroybuenas-sub001/pkg/source"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// Processor loads source images and encodes results
type Processor struct {
	loader *source.Loader
	client *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return NewProcessorWithLoader(source.New())
}

// NewProcessorWithLoader creates a processor that decodes with loader
func NewProcessorWithLoader(loader *source.Loader) *Processor {
	return &Processor{
		loader: loader,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadImageFromURL downloads and decodes an image from a URL
func (p *Processor) LoadImageFromURL(ctx context.Context, imageURL string) (*source.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "cardcrop/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	return p.loader.Decode(resp.Body)
}

// LoadImage decodes an image file
func (p *Processor) LoadImage(path string) (*source.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()

	img, err := p.loader.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(ctx context.Context, src string) (*source.Image, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return p.LoadImageFromURL(ctx, src)
	}
	return p.LoadImage(src)
}

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(name string) (types.Format, error) {
	switch strings.TrimPrefix(strings.ToLower(name), ".") {
	case "", "jpg", "jpeg":
		return types.JPEG, nil
	case "png":
		return types.PNG, nil
	case "webp":
		return types.WebP, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", name)
}

// QualityPercent maps a quality in [0,1] to the 1-100 scale used by encoders.
func QualityPercent(quality float64) int {
	if math.IsNaN(quality) {
		return 1
	}
	q := int(math.Round(quality * 100))
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// Encode writes img in the given format. quality is in [0,1] and is ignored
// for PNG.
func Encode(w io.Writer, img image.Image, format types.Format, quality float64) error {
	switch format {
	case types.WebP:
		opts := &webp.Options{Quality: float32(QualityPercent(quality))}
		return webp.Encode(w, img, opts)
	case types.PNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case types.JPEG, "":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(QualityPercent(quality)))
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// EncodeResult encodes img into a CropResult that owns its bytes.
func EncodeResult(img image.Image, format types.Format, quality float64) (types.CropResult, error) {
	if format == "" {
		format = types.JPEG
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return types.CropResult{}, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	b := img.Bounds()
	return types.CropResult{
		Data:    buf.Bytes(),
		Width:   b.Dx(),
		Height:  b.Dy(),
		Quality: quality,
		Format:  format,
	}, nil
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path string, format types.Format, quality float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Encode(f, img, format, quality); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveResult writes already encoded bytes to path.
func (p *Processor) SaveResult(res types.CropResult, path string) error {
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CreateDebugOverlay draws the crop region (in source pixels) over a copy of img
func (p *Processor) CreateDebugOverlay(img image.Image, region types.Rect) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	gold := color.NRGBA{255, 204, 0, 255}
	red := color.NRGBA{255, 0, 0, 255}
	stroke := int(math.Max(2, 0.004*float64(minInt(w, h))))
	cross := int(math.Max(4, 0.01*float64(minInt(w, h))))

	drawBox(nrgba, region, gold, stroke)

	px := int(region.X + region.Width/2 + 0.5)
	py := int(region.Y + region.Height/2 + 0.5)
	drawHLine(nrgba, py, px-cross, px+cross, red)
	drawVLine(nrgba, px, py-cross, py+cross, red)

	return nrgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func rectToPixels(r types.Rect) (int, int, int, int) {
	x0 := int(r.X + 0.5)
	y0 := int(r.Y + 0.5)
	x1 := int(r.X + r.Width + 0.5)
	y1 := int(r.Y + r.Height + 0.5)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}

func drawBox(img *image.NRGBA, r types.Rect, c color.NRGBA, stroke int) {
	x0, y0, x1, y1 := rectToPixels(r)
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
