package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cvegam02/chorroybuenas-sub001/internal/utils"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/editor"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/gesture"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/processing"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/render"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// cropOpts holds the options of the crop command.
type cropOpts struct {
	in       string
	out      string
	viewport string
	dpr      float64
	zoom     float64
	pan      string
	events   string // JSON array of gesture.Event replayed in order
	preview  string
	quality  float64
	format   string
}

// newCropCmd creates the crop command, a headless edit session.
func newCropCmd() *cobra.Command {
	var opts cropOpts

	cmd := &cobra.Command{
		Use:   "crop",
		Short: "Frame an image in a viewport and export what it shows",
		Long: `crop opens an edit session for one image, fitted to the viewport, then applies
--zoom, --pan and the --events gesture script in that order and commits. The output
is pixel-identical to the preview written by --preview, minus the frame outline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if !cmd.Flags().Changed("dpr") {
				opts.dpr = cfg.Editor.DevicePixelRatio
			}
			if !cmd.Flags().Changed("quality") {
				opts.quality = cfg.Editor.Quality
			}
			return runCrop(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.in, "in", "", "input image file or URL")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file")
	cmd.Flags().StringVar(&opts.viewport, "viewport", "400x600", "viewport size WxH in logical pixels")
	cmd.Flags().Float64Var(&opts.dpr, "dpr", 1, "device pixel ratio")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 0, "scale delta applied about the viewport centre")
	cmd.Flags().StringVar(&opts.pan, "pan", "", "pan offset dx,dy in viewport pixels")
	cmd.Flags().StringVar(&opts.events, "events", "", "gesture script (JSON array of pointer events)")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "also write the framed preview as PNG")
	cmd.Flags().Float64Var(&opts.quality, "quality", editor.DefaultQuality, "encoder quality in [0,1]")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: jpg (default), png, webp")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runCrop(ctx context.Context, opts *cropOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	vp, err := parseViewport(opts.viewport)
	if err != nil {
		return err
	}
	dx, dy, err := parsePan(opts.pan)
	if err != nil {
		return err
	}
	format, err := processing.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	events, err := loadEvents(opts.events)
	if err != nil {
		return err
	}

	processor := processing.NewProcessor()
	src, err := processor.LoadImageSmart(ctx, opts.in)
	if err != nil {
		return err
	}

	sessionCfg := cfg.EditorConfig()
	sessionCfg.DevicePixelRatio = opts.dpr
	sessionCfg.Format = format

	session, err := editor.BeginWithSource(src, vp, sessionCfg)
	if err != nil {
		return err
	}
	defer session.Cancel()

	if opts.zoom != 0 {
		if err := session.Zoom(opts.zoom, nil); err != nil {
			return err
		}
	}
	if dx != 0 || dy != 0 {
		if err := session.Pan(dx, dy); err != nil {
			return err
		}
	}
	for i, ev := range events {
		if err := session.HandlePointerEvent(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	st := session.State()
	logger.Debug("session state", "scale", st.Scale, "offset_x", st.OffsetX, "offset_y", st.OffsetY, "events", len(events))

	if opts.preview != "" {
		surface, err := render.NewSurface(vp, opts.dpr, sessionCfg.MaxSurfacePixels)
		if err != nil {
			return err
		}
		if err := session.Render(surface); err != nil {
			return err
		}
		if err := processor.SaveImage(surface.Image(), opts.preview, types.PNG, 1); err != nil {
			return err
		}
		logger.Info("wrote preview", "path", opts.preview)
	}

	res, err := session.Commit(opts.quality)
	if err != nil {
		return err
	}
	if err := processor.SaveResult(res, opts.out); err != nil {
		return err
	}

	logger.Info("wrote", "path", opts.out, "size", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"bytes", utils.FormatFileSize(int64(len(res.Data))))
	return nil
}

// parseViewport parses "WxH".
func parseViewport(s string) (types.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return types.Size{}, fmt.Errorf("invalid viewport %q: want WxH", s)
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return types.Size{}, fmt.Errorf("invalid viewport width %q: %w", w, err)
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return types.Size{}, fmt.Errorf("invalid viewport height %q: %w", h, err)
	}
	return types.Size{Width: width, Height: height}, nil
}

// parsePan parses "dx,dy". An empty string is no pan.
func parsePan(s string) (float64, float64, error) {
	if s == "" {
		return 0, 0, nil
	}
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid pan %q: want dx,dy", s)
	}
	dx, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pan dx %q: %w", a, err)
	}
	dy, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pan dy %q: %w", b, err)
	}
	return dx, dy, nil
}

func loadEvents(path string) ([]gesture.Event, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gesture script: %w", err)
	}
	var events []gesture.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse gesture script: %w", err)
	}
	return events, nil
}
