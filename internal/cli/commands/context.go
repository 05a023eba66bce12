package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tenantgate/tenantgate/internal/cli/client"
	"github.com/tenantgate/tenantgate/internal/cli/credentials"
)

// NewContextCmd creates the context command
func NewContextCmd() *cobra.Command {
	var (
		serverURL string
		sessionID string
		products  bool
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show what a session resolves to on a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				return fmt.Errorf("--server is required")
			}
			if sessionID == "" {
				var err error
				sessionID, err = credentials.Default.LoadSession(serverURL)
				if err != nil {
					return err
				}
			}

			apiClient := client.New(serverURL)
			authCtx, err := apiClient.AuthContext(sessionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tenant: %d\n", authCtx.TenantID)
			if authCtx.UserID != nil {
				fmt.Fprintf(out, "User:   %d\n", *authCtx.UserID)
			} else {
				fmt.Fprintln(out, "User:   (tenant principal)")
			}

			if !products || authCtx.UserID == nil {
				return nil
			}

			list, err := apiClient.UserProducts(sessionID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Products (%d):\n", len(list))
			for _, p := range list {
				fmt.Fprintf(out, "  %d  %s\n", p.ProductID, p.ProductName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id (defaults to the saved one)")
	cmd.Flags().BoolVar(&products, "products", false, "Also list the user's products")
	return cmd
}
