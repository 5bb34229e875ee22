package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/tablescope/internal/bridge"
	"github.com/koustreak/tablescope/internal/session"
)

// NewConnectCommand creates the connect command.
func NewConnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Ask the backend to open its database connection",
		Long: `Ask the backend to open its database connection and report the result.

Transport failures and timeouts are retried with backoff; an answer from the
backend, successful or not, is final.`,
		Example: `  tablescope connect
  tablescope connect --backend-url http://db-host:8080 --connect-timeout 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := RuntimeFrom(cmd.Context())
			client, err := rt.Backend()
			if err != nil {
				return err
			}

			// No window: the follow-up navigation is logged and dropped.
			shell := bridge.NewShell(rt.Log, nil, rt.Config.FileFilter())
			ctrl := session.NewConnectController(client, shell, rt.Config.ConnectSettings(), rt.Log)

			out := ctrl.Connect(cmd.Context())
			if out.Err != nil {
				return &describedError{msg: out.Message, err: out.Err}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%s)\n", out.Message, plural(out.Attempts, "attempt"))
			return nil
		},
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
