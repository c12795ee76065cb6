package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	cardcrop "github.com/cvegam02/chorroybuenas-sub001"
	"github.com/cvegam02/chorroybuenas-sub001/internal/config"
	"github.com/cvegam02/chorroybuenas-sub001/internal/utils"
)

// allowMissingConfig marks commands that may name a config file that does
// not exist yet.
const allowMissingConfig = "allow-missing-config"

// Execute runs the cardcrop CLI with ctx and returns the first command error.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stderr).ExecuteContext(ctx)
}

// newRootCmd builds the command tree. Logs go to logOut.
func newRootCmd(logOut io.Writer) *cobra.Command {
	var verbose bool
	var configPath string

	root := &cobra.Command{
		Use:          "cardcrop",
		Short:        "cardcrop frames images for printable cards",
		Long:         `cardcrop scales, pans and crops images into a fixed card frame, either interactively through a scripted edit session or automatically with a centred cover crop.`,
		Version:      cardcrop.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(logOut, level)
			cardcrop.SetLogger(slog.New(logger))

			explicit := cmd.Flags().Changed("config") && cmd.Annotations[allowMissingConfig] == ""
			cfg, err := loadConfig(configPath, explicit)
			if err != nil {
				return err
			}

			ctx := withLogger(cmd.Context(), logger)
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "config file (JSON or TOML)")

	root.AddCommand(newCoverCmd())
	root.AddCommand(newCropCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// loadConfig reads path when it exists. A missing file is only an error when
// the user named it explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if !utils.FileExists(path) {
		if explicit {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return config.Default(), nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
