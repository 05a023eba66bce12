package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tenantgate/tenantgate/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "tenantgate",
	Short: "Tenantgate - tenant, role and product access administration",
	Long: `Tenantgate CLI - operate a Tenantgate deployment.

Seed tenants, roles and products, create users, and mint development
sessions against the configured database and Redis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tenantgate version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewSeedCmd())
	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewSessionCmd())
	rootCmd.AddCommand(commands.NewContextCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
