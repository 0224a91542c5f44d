package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "cosmetica",
		Short:         "Cosmetics storefront API",
		Long:          "Cosmetica serves the storefront API: catalog, accounts, orders and sales analytics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $COSMETICA_CONFIG or ./cosmetica.yaml)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newOutboxCmd(&configPath))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
