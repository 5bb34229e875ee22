package commands

import (
	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
)

// NewObjectsCommand creates the objects command.
func NewObjectsCommand() *cobra.Command {
	var withHeader bool

	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List CSV files in the configured object store",
		Long: `List the CSV objects under store.prefix in store.bucket.

Any listed key can be loaded with: tablescope load --object <key> --table <table>`,
		Example: `  tablescope objects
  tablescope objects --header`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := RuntimeFrom(cmd.Context())
			cfg := rt.Config.FileStore()
			if !cfg.Enabled() {
				return errs.New(errs.ErrKindInvalidInput, "no object store configured (set store.endpoint and store.bucket)")
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			src := filestore.NewSource(store, cfg, rt.Config.Intake.Extensions, rt.Log)
			objects, err := src.List(cmd.Context())
			if err != nil {
				return err
			}

			var headers map[string][]string
			if withHeader {
				headers = make(map[string][]string, len(objects))
				for _, o := range objects {
					h, err := src.Header(cmd.Context(), o.Key)
					if err != nil {
						rt.Log.WarnWith("failed to read header", err, map[string]interface{}{"key": o.Key})
						continue
					}
					headers[o.Key] = h
				}
			}

			renderObjects(cmd.OutOrStdout(), src.Bucket(), objects, headers)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHeader, "header", false, "Also read each file's CSV header")

	return cmd
}
