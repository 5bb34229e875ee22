package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/session"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var (
		table  string
		object string
	)

	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Bulk-load a CSV file into a table",
		Long: `Bulk-load a CSV file into a table.

The file is either a local path or, with --object, a key in the configured
object store bucket which is first downloaded to the staging directory. Only
files with an accepted extension (.csv by default) are sent to the backend.`,
		Example: `  tablescope load ./data/recipe.csv --table recipe
  tablescope load --object imports/recipe.csv --table recipe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if table == "" {
				return errs.New(errs.ErrKindInvalidInput, "--table is required")
			}
			if (len(args) == 1) == (object != "") {
				return errs.New(errs.ErrKindInvalidInput, "give either a file or --object")
			}

			rt := RuntimeFrom(cmd.Context())
			client, err := rt.Backend()
			if err != nil {
				return err
			}

			var picker bridge.Picker
			if object != "" {
				store, err := openStore(cmd.Context(), rt.Config.FileStore())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				picker = filestore.NewSource(store, rt.Config.FileStore(), rt.Config.Intake.Extensions, rt.Log).Picker(object)
			} else {
				picker = bridge.StaticPicker(args[0])
			}

			shell := bridge.NewShell(rt.Log, picker, rt.Config.FileFilter())
			intake := session.NewIntake(shell, client, rt.Config.Intake.Extensions, rt.Log)

			s := newSpinner(cmd.ErrOrStderr(), fmt.Sprintf(" loading into %s", table))
			s.Start()
			notice := intake.Load(cmd.Context(), table)
			s.Stop()

			if notice.Kind != session.NoticeResult {
				if notice.Err != nil {
					return describeNotice(notice)
				}
				return fmt.Errorf("%s", notice.Message)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), notice.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "Table to load into")
	cmd.Flags().StringVar(&object, "object", "", "Object key in the configured bucket")

	return cmd
}

// newSpinner draws on w only when w is a terminal.
func newSpinner(w io.Writer, suffix string) *spinner.Spinner {
	f, isFile := w.(*os.File)
	if !isFile {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		s.Disable()
		return s
	}
	return spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f), spinner.WithSuffix(suffix))
}

func describeNotice(n session.Notice) error {
	return &describedError{msg: n.Message, err: n.Err}
}
