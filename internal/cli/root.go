// Package cli provides the command-line interface for tablescope.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/cli/commands"
	"github.com/koustreak/tablescope/internal/config"
	"github.com/koustreak/tablescope/internal/logger"
)

// Version information (set at build time).
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tablescope",
		Short: "tablescope - browse, load and search backend tables",
		Long: `tablescope talks to a local database backend over HTTP.

Run without a subcommand to open the terminal interface. The subcommands do
the same jobs from scripts: connect, inspect a table, load a CSV file and
search a column.`,
		Version:     Version,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{commands.AnnotationInteractive: "true"},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			output, file := cfg.Log.Output, cfg.Log.File
			if cmd.Annotations[commands.AnnotationInteractive] == "true" {
				// The interface owns the terminal.
				output, file = "file", interactiveLogFile(file)
			}
			w, closer, err := logger.OpenOutput(output, file)
			if err != nil {
				return err
			}
			log := logger.New(&logger.Config{
				Level:      cfg.Log.Level,
				Format:     cfg.Log.Format,
				TimeFormat: "rfc3339",
				Output:     w,
			})
			log.With().Str("command", cmd.CommandPath()).Str("config", cfg.FileUsed).Logger().Debug("configuration loaded")

			rt := commands.NewRuntime(cfg, log, closer)
			ctx := commands.WithRuntime(cmd.Context(), rt)
			cmd.SetContext(log.WithContext(ctx))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return commands.RuntimeFrom(cmd.Context()).Close()
		},
		RunE:          commands.RunUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./tablescope.yaml, then the user config dir)")
	pf.String("backend-url", "", "Backend base URL")
	pf.Duration("request-timeout", 0, "Timeout for a single backend request")
	pf.Duration("connect-timeout", 0, "Timeout for each connect attempt")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-format", "", "Log format (console|json)")
	pf.String("log-output", "", "Log output (stderr|stdout|file)")
	pf.String("log-file", "", "Log file path when --log-output=file")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"console", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	commands.AddUIFlags(rootCmd)

	rootCmd.AddCommand(commands.NewVersionCommand(Version, Commit, Date))
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(commands.NewConnectCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewLoadCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewObjectsCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())

	return rootCmd
}

// interactiveLogFile returns the configured log file, or one in the user
// cache directory.
func interactiveLogFile(configured string) string {
	if configured != "" {
		return configured
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "tablescope", "tablescope.log")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
