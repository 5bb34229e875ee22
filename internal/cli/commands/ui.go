package commands

import (
	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/tui"
)

// AnnotationInteractive marks commands that own the terminal. Their logs
// go to a file.
const AnnotationInteractive = "tablescope/interactive"

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the terminal interface",
		Long: `Start the terminal interface: connect to the backend, pick a table,
load CSV files into it and search its columns.`,
		Example: `  tablescope ui
  tablescope ui --table recipe
  tablescope ui --start-dir ~/exports`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{AnnotationInteractive: "true"},
		RunE:        RunUI,
	}
	AddUIFlags(cmd)
	return cmd
}

// AddUIFlags registers the ui flags on cmd. The root command shares them
// since it starts the interface when run without a subcommand.
func AddUIFlags(cmd *cobra.Command) {
	cmd.Flags().String("table", "", "Open this table's page directly")
	cmd.Flags().String("start-dir", "", "Directory the file picker opens in")
}

// RunUI starts the terminal interface.
func RunUI(cmd *cobra.Command, _ []string) error {
	rt := RuntimeFrom(cmd.Context())
	client, err := rt.Backend()
	if err != nil {
		return err
	}

	start := tui.PathConnect
	if table, _ := cmd.Flags().GetString("table"); table != "" {
		start = tui.TablePagePath(table)
	}

	cfg := rt.Config
	return tui.Run(cmd.Context(), tui.Options{
		Backend:    client,
		Shell:      bridge.NewShell(rt.Log, nil, cfg.FileFilter()),
		Connect:    cfg.ConnectSettings(),
		Extensions: cfg.Intake.Extensions,
		Tables:     cfg.Tables,
		StartDir:   cfg.Intake.StartDir,
		StartPage:  start,
		Log:        rt.Log,
	})
}
