package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jitheswar/ruralAi/internal/sync"
)

// NewSyncCommand creates the sync command: run one pull-then-push round
// against the remote transport.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synchronize local records with the server",
		Long: `Run one pull-then-push synchronization round.

A transport failure is not an error state: records stay flagged pending
and the next sync retries from the last checkpoint with no data loss.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			engine := sync.New(s, sync.StubTransport{})
			if err := engine.Synchronize(cmd.Context()); err != nil {
				if sync.IsTransportError(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "Sync pending: server unreachable, will retry.")
					return nil
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Sync complete.")
			return nil
		},
	}
}
