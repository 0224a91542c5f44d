package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cosmetica/internal/repos"
)

func newOutboxCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and drain the order event outbox",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Deliver one batch of pending events and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := repos.Connect(cfg.DBDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			proc, closeProc, err := newProcessor(cfg, db)
			if err != nil {
				return err
			}
			defer closeProc()

			n, err := proc.ProcessBatch(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "delivered %d event(s)\n", n)
			return nil
		},
	})
	return cmd
}
