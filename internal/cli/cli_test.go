package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cardcrop "github.com/cvegam02/chorroybuenas-sub001"
	"github.com/cvegam02/chorroybuenas-sub001/internal/config"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/gesture"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// runCLI executes the command tree with args and returns stdout and logs.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() { cardcrop.SetLogger(nil) })

	var out, logs bytes.Buffer
	root := newRootCmd(&logs)
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

// writeConfig saves a default config so tests never read the user's file.
func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 90, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func imageSize(t *testing.T, path string) (int, int, string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected output %s: %v", path, err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Expected decodable image at %s: %v", path, err)
	}
	return cfg.Width, cfg.Height, format
}

func TestParseViewport(t *testing.T) {
	vp, err := parseViewport("400x600")
	if err != nil || vp != (types.Size{Width: 400, Height: 600}) {
		t.Errorf("Expected 400x600, got %+v (%v)", vp, err)
	}
	vp, err = parseViewport("12.5X8")
	if err != nil || vp != (types.Size{Width: 12.5, Height: 8}) {
		t.Errorf("Expected 12.5x8, got %+v (%v)", vp, err)
	}
	for _, bad := range []string{"", "400", "ax600", "400xb"} {
		if _, err := parseViewport(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestParsePan(t *testing.T) {
	dx, dy, err := parsePan("-10, 4.5")
	if err != nil || dx != -10 || dy != 4.5 {
		t.Errorf("Expected (-10, 4.5), got (%v, %v) %v", dx, dy, err)
	}
	if dx, dy, err := parsePan(""); err != nil || dx != 0 || dy != 0 {
		t.Error("Expected empty pan to be zero")
	}
	if _, _, err := parsePan("3"); err == nil {
		t.Error("Expected error for missing dy")
	}
}

func TestCoverCommand(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	writePNG(t, filepath.Join(inDir, "wide.png"), 300, 200)
	writePNG(t, filepath.Join(inDir, "tall.png"), 100, 400)
	if err := os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("skip"), 0644); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Cover.Width = 80
		c.Cover.Height = 120
	})

	_, logs, err := runCLI(t, "--config", cfgPath, "cover", "--in", inDir, "--out", outDir, "--debug")
	if err != nil {
		t.Fatalf("cover failed: %v\n%s", err, logs)
	}

	for _, name := range []string{"wide_card.jpg", "tall_card.jpg"} {
		w, h, format := imageSize(t, filepath.Join(outDir, name))
		if w != 80 || h != 120 || format != "jpeg" {
			t.Errorf("%s: expected 80x120 jpeg, got %dx%d %s", name, w, h, format)
		}
	}

	w, h, format := imageSize(t, filepath.Join(outDir, "wide_card_region.png"))
	if w != 300 || h != 200 || format != "png" {
		t.Errorf("Expected 300x200 png overlay, got %dx%d %s", w, h, format)
	}
}

func TestCoverCommandFlagsOverrideConfig(t *testing.T) {
	in := filepath.Join(t.TempDir(), "photo.png")
	outDir := t.TempDir()
	writePNG(t, in, 64, 64)
	cfgPath := writeConfig(t, nil)

	_, logs, err := runCLI(t, "--config", cfgPath, "cover", "--in", in, "--out", outDir,
		"--width", "20", "--height", "30", "--format", "png", "--suffix", "")
	if err != nil {
		t.Fatalf("cover failed: %v\n%s", err, logs)
	}

	w, h, format := imageSize(t, filepath.Join(outDir, "photo.png"))
	if w != 20 || h != 30 || format != "png" {
		t.Errorf("Expected 20x30 png, got %dx%d %s", w, h, format)
	}
}

func TestCoverCommandErrors(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	if _, _, err := runCLI(t, "--config", cfgPath, "cover", "--in", filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing input")
	}
	if _, _, err := runCLI(t, "--config", cfgPath, "cover", "--in", t.TempDir()); err == nil {
		t.Error("Expected error for a directory without images")
	}

	bad := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	_, logs, err := runCLI(t, "--config", cfgPath, "cover", "--in", bad, "--out", t.TempDir())
	if err == nil || !strings.Contains(logs, "cover crop failed") {
		t.Errorf("Expected a logged decode failure, got %v\n%s", err, logs)
	}
}

func TestCropCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 1000, 2000)

	events := []gesture.Event{
		{Kind: gesture.Wheel, Device: gesture.Mouse, DeltaY: -1},
		{Kind: gesture.Down, Device: gesture.Mouse, X: 100, Y: 100},
		{Kind: gesture.Move, Device: gesture.Mouse, X: 120, Y: 90},
		{Kind: gesture.Up, Device: gesture.Mouse, X: 120, Y: 90},
	}
	script, err := json.Marshal(events)
	if err != nil {
		t.Fatal(err)
	}
	scriptPath := filepath.Join(dir, "events.json")
	if err := os.WriteFile(scriptPath, script, 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "card.jpg")
	preview := filepath.Join(dir, "preview.png")
	_, logs, err := runCLI(t, "--config", writeConfig(t, nil), "-v", "crop",
		"--in", in, "--out", out, "--viewport", "100x150", "--dpr", "2",
		"--zoom", "0.2", "--pan", "5,-5", "--events", scriptPath, "--preview", preview)
	if err != nil {
		t.Fatalf("crop failed: %v\n%s", err, logs)
	}

	if w, h, format := imageSize(t, out); w != 200 || h != 300 || format != "jpeg" {
		t.Errorf("Expected 200x300 jpeg, got %dx%d %s", w, h, format)
	}
	if w, h, format := imageSize(t, preview); w != 200 || h != 300 || format != "png" {
		t.Errorf("Expected 200x300 png preview, got %dx%d %s", w, h, format)
	}
	if !strings.Contains(logs, "session state") {
		t.Errorf("Expected debug logs with -v, got %s", logs)
	}
}

func TestCropCommandErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 10, 10)
	cfgPath := writeConfig(t, nil)

	tests := [][]string{
		{"crop", "--in", in},
		{"crop", "--in", in, "--out", filepath.Join(dir, "o.jpg"), "--viewport", "bogus"},
		{"crop", "--in", in, "--out", filepath.Join(dir, "o.jpg"), "--viewport", "0x10"},
		{"crop", "--in", in, "--out", filepath.Join(dir, "o.jpg"), "--events", filepath.Join(dir, "missing.json")},
		{"crop", "--in", filepath.Join(dir, "missing.png"), "--out", filepath.Join(dir, "o.jpg")},
	}
	for _, args := range tests {
		if _, _, err := runCLI(t, append([]string{"--config", cfgPath}, args...)...); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardcrop.toml")

	if _, logs, err := runCLI(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init failed: %v\n%s", err, logs)
	}
	if _, _, err := runCLI(t, "--config", path, "config", "init"); err == nil {
		t.Error("Expected init to refuse overwriting without --force")
	}
	if _, _, err := runCLI(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}

	out, _, err := runCLI(t, "--config", path, "config", "show", "--format", "toml")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "[editor]") || !strings.Contains(out, "[cover]") {
		t.Errorf("Expected TOML tables, got %s", out)
	}

	out, _, err = runCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var shown config.Config
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if shown != *config.Default() {
		t.Errorf("Expected defaults, got %+v", shown)
	}

	if _, _, err := runCLI(t, "--config", path, "config", "show", "--format", "yaml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestExplicitMissingConfig(t *testing.T) {
	_, _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.json"), "config", "show")
	if err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.Editor.MinScale = 10 })
	if _, _, err := runCLI(t, "--config", path, "config", "show"); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestCropOutputIsJPEG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "photo.png")
	writePNG(t, in, 40, 40)
	out := filepath.Join(dir, "out.jpg")

	if _, logs, err := runCLI(t, "--config", writeConfig(t, nil), "crop", "--in", in, "--out", out, "--viewport", "20x30"); err != nil {
		t.Fatalf("crop failed: %v\n%s", err, logs)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("Expected JPEG output: %v", err)
	}
}
