package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/cvegam02/chorroybuenas-sub001/internal/config"
	"github.com/cvegam02/chorroybuenas-sub001/internal/utils"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/cropper"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/processing"
	"github.com/cvegam02/chorroybuenas-sub001/pkg/types"
)

// coverOpts holds the resolved options of the cover command.
type coverOpts struct {
	in      string
	outDir  string
	width   int
	height  int
	quality float64
	format  string
	prefix  string
	suffix  string
	debug   bool // also write the source with the kept region outlined
}

// newCoverCmd creates the cover command. Unset flags fall back to the
// configuration file.
func newCoverCmd() *cobra.Command {
	var opts coverOpts

	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Scale and centre-crop images to fill the card frame",
		Long:  `cover crops every input to exactly the target size: the image is scaled to fill the frame and the overflow is trimmed equally from both sides. Inputs may be a file, a directory (walked recursively) or an http(s) URL.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCoverDefaults(cmd, &opts, configFromContext(cmd.Context()))
			return runCover(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.in, "in", "", "input image file, directory or URL")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory")
	cmd.Flags().IntVar(&opts.width, "width", 0, "target width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "target height in pixels")
	cmd.Flags().Float64Var(&opts.quality, "quality", 0, "encoder quality in [0,1]")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: jpg, png, webp")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "output file name prefix")
	cmd.Flags().StringVar(&opts.suffix, "suffix", "", "output file name suffix")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "write debug overlays showing the kept region")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func applyCoverDefaults(cmd *cobra.Command, opts *coverOpts, cfg *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("out") {
		opts.outDir = cfg.Output.OutputDir
	}
	if !flags.Changed("width") {
		opts.width = cfg.Cover.Width
	}
	if !flags.Changed("height") {
		opts.height = cfg.Cover.Height
	}
	if !flags.Changed("quality") {
		opts.quality = cfg.Cover.Quality
	}
	if !flags.Changed("format") {
		opts.format = cfg.Output.DefaultFormat
	}
	if !flags.Changed("prefix") {
		opts.prefix = cfg.Output.Prefix
	}
	if !flags.Changed("suffix") {
		opts.suffix = cfg.Output.Suffix
	}
}

func runCover(ctx context.Context, opts *coverOpts) error {
	logger := loggerFromContext(ctx)

	if opts.width <= 0 || opts.height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", opts.width, opts.height)
	}
	format, err := processing.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	inputs, err := coverInputs(opts.in)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no image files found in %s", opts.in)
	}
	if err := utils.EnsureDir(opts.outDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	processor := processing.NewProcessor()
	cc := cropper.NewWithConfig(cropper.CropConfig{Filter: imaging.Lanczos, Format: format})
	prog := newProgress(logger)

	failed := 0
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := coverOne(ctx, processor, cc, in, format, opts); err != nil {
			logger.Error("cover crop failed", "input", in, "error", err)
			failed++
		}
	}

	prog.done("cover crop finished", "images", len(inputs), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(inputs))
	}
	return nil
}

// coverInputs expands a directory into its image files.
func coverInputs(in string) ([]string, error) {
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return []string{in}, nil
	}
	if utils.DirExists(in) {
		return utils.ListImageFiles(in)
	}
	if !utils.FileExists(in) {
		return nil, fmt.Errorf("input %s not found", in)
	}
	return []string{in}, nil
}

func coverOne(ctx context.Context, processor *processing.Processor, cc *cropper.CoverCropper, in string, format types.Format, opts *coverOpts) error {
	logger := loggerFromContext(ctx)

	src, err := processor.LoadImageSmart(ctx, in)
	if err != nil {
		return err
	}

	res, err := cc.CoverCrop(src.Raster(), opts.width, opts.height, opts.quality)
	if err != nil {
		return err
	}

	outPath := utils.GenerateOutputFilename(in, opts.outDir, opts.prefix, opts.suffix, string(format))
	if err := processor.SaveResult(res, outPath); err != nil {
		return err
	}
	logger.Info("wrote", "path", outPath, "size", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"bytes", utils.FormatFileSize(int64(len(res.Data))))

	if opts.debug {
		size := src.Size()
		region := cropper.CoverRegion(size.Width, size.Height, float64(opts.width), float64(opts.height))
		overlay := processor.CreateDebugOverlay(src.Raster(), region)

		dbgPath := utils.GenerateOutputFilename(in, opts.outDir, opts.prefix, opts.suffix+"_region", string(types.PNG))
		if err := processor.SaveImage(overlay, dbgPath, types.PNG, 1); err != nil {
			logger.Warn("debug overlay save failed", "error", err)
		} else {
			logger.Debug("wrote debug overlay", "path", filepath.Clean(dbgPath))
		}
	}
	return nil
}
