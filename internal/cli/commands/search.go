package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/session"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var table, column, value string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a table column for a value",
		Long: `Search a table column for a value and print the match count and rows.

The value is sent unchanged; the backend decides how it is compared.`,
		Example: `  tablescope search --table recipe --column name --value "pancakes"
  tablescope search --table item --column id --value 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(table) == "" {
				return errs.New(errs.ErrKindInvalidInput, "--table is required")
			}
			if strings.TrimSpace(column) == "" {
				return errs.New(errs.ErrKindInvalidInput, "--column is required")
			}

			rt := RuntimeFrom(cmd.Context())
			client, err := rt.Backend()
			if err != nil {
				return err
			}

			q := session.NewQueryClient(client, rt.Log)
			out, err := q.Search(cmd.Context(), table, column, value)
			if err != nil {
				return describeErr(err, "Search")
			}

			// Label the rows with the table's columns when the page is readable.
			var headers []string
			if len(out.Result.Results) > 0 {
				if info, err := client.InspectTable(cmd.Context(), table); err == nil {
					headers = info.ColumnNames()
				} else {
					rt.Log.WarnWith("column names unavailable", err, nil)
				}
			}
			renderSearch(cmd.OutOrStdout(), out.Result, headers)
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "Table to search")
	cmd.Flags().StringVar(&column, "column", "", "Column to compare")
	cmd.Flags().StringVar(&value, "value", "", "Value to look for")

	return cmd
}
