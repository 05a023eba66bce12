package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tenantgate/tenantgate/internal/database"
	"github.com/tenantgate/tenantgate/internal/models"
	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// NewUserCmd creates the user command group
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage tenant users directly in the database",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		tenantID int64
		input    tenancy.CreateUserInput
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and optionally grant roles by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}

			if input.Password == "" {
				input.Password, err = readPassword()
				if err != nil {
					return err
				}
			}

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx := cmd.Context()
			user, err := tenancy.NewUserService(db, log).Create(ctx, tenantID, input)
			if err != nil {
				if msg, ok := tenancy.Message(err); ok {
					return fmt.Errorf("%s", msg)
				}
				return err
			}

			roleUsers := tenancy.NewRoleUserService(db, log)
			for _, name := range roles {
				var role models.Role
				if err := db.WithContext(ctx).Where("tenant_id = ? AND role_name = ?", tenantID, name).First(&role).Error; err != nil {
					return fmt.Errorf("role %q not found in tenant %d", name, tenantID)
				}
				if _, err := roleUsers.Create(ctx, tenantID, tenancy.RoleUserInput{RoleID: role.RoleID, UserID: user.UserID}); err != nil {
					return fmt.Errorf("failed to grant role %q: %w", name, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created user %d (%s) in tenant %d\n", user.UserID, user.Email, tenantID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "Tenant id (required)")
	cmd.Flags().StringVar(&input.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&input.Password, "password", os.Getenv("TENANTGATE_PASSWORD"), "Password (prompted when omitted)")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Role name to grant (repeatable)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword prompts on a terminal without echo
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or TENANTGATE_PASSWORD env var)")
	}

	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(fd)
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
