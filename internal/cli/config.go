package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cvegam02/chorroybuenas-sub001/internal/utils"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the cardcrop configuration file",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// newConfigInitCmd writes the effective configuration to the --config path.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the --config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			if utils.FileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := configFromContext(cmd.Context()).SaveToFile(path); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("wrote config", "path", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Annotations = map[string]string{allowMissingConfig: "true"}
	return cmd
}

// newConfigShowCmd prints the effective configuration.
func newConfigShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var asTOML bool
			switch strings.ToLower(format) {
			case "json":
			case "toml":
				asTOML = true
			default:
				return fmt.Errorf("unsupported config format %q: use json or toml", format)
			}

			data, err := configFromContext(cmd.Context()).Marshal(asTOML)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n"))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format: json or toml")
	return cmd
}
