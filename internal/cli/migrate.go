package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cosmetica/internal/repos"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long:  "Apply the schema to the configured database. With --seed, also load the demo accounts and catalog.",
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

			if err := repos.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if seed {
				if err := repos.Seed(db); err != nil {
					return fmt.Errorf("seed: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo users and products")
	return cmd
}
