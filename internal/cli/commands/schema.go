package commands

import (
	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/session"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the columns of a table",
		Long:  `Fetch the backend's table page and print its column list.`,
		Example: `  tablescope schema recipe
  tablescope schema nutrient_lu`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := RuntimeFrom(cmd.Context())
			client, err := rt.Backend()
			if err != nil {
				return err
			}

			info, err := client.InspectTable(cmd.Context(), args[0])
			if err != nil {
				return describeErr(err, "Loading "+args[0])
			}
			renderColumns(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

// describeErr keeps err for errors.Is/As while showing the same text the
// terminal UI would.
func describeErr(err error, action string) error {
	return &describedError{msg: session.Describe(err, action), err: err}
}

type describedError struct {
	msg string
	err error
}

func (e *describedError) Error() string { return e.msg }
func (e *describedError) Unwrap() error { return e.err }
