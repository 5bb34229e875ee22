package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
	}
	cmd.AddCommand(newConfigShowCommand(), newConfigInitCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, TABLESCOPE_
environment variables and flags are applied. Secrets are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := RuntimeFrom(cmd.Context()).Config
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			if cfg.FileUsed != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# from %s\n", cfg.FileUsed)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var (
		force bool
		user  bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Long: `Write the default configuration to ./tablescope.yaml, the given path,
or with --user to the per-user config directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFileName
			switch {
			case len(args) == 1:
				path = args[0]
			case user:
				path = config.UserConfigPath()
				if path == "" {
					return fmt.Errorf("no user config directory on this system")
				}
			}

			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&user, "user", false, "Write to the per-user config directory")

	return cmd
}
