package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/tenantgate/tenantgate/internal/database"
	"github.com/tenantgate/tenantgate/internal/seed"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	var (
		file string
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create tenants, roles, products and users from a YAML file",
		Long: `Seed applies a YAML file to the configured database.

Existing rows are matched by name (users by email) and left untouched,
so the same file can be applied repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, file, yes)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "Seed file to apply")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func runSeed(cmd *cobra.Command, file string, yes bool) error {
	f, err := seed.Load(file)
	if err != nil {
		return err
	}

	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSeedPlan(out, f)

	if !yes {
		ok, err := confirm("Apply seed to " + cfg.Database.URL)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	result, err := seed.Apply(cmd.Context(), db, f, log)
	if err != nil {
		return fmt.Errorf("failed to apply seed: %w", err)
	}

	fmt.Fprintf(out, "✓ Seed applied: %d tenants, %d roles, %d products, %d users, %d grants created\n",
		result.Tenants, result.Roles, result.Products, result.Users,
		result.RoleUsers+result.AppRoles+result.TenantProducts)
	return nil
}

func printSeedPlan(out io.Writer, f *seed.File) {
	fmt.Fprintf(out, "Products: %d\n", len(f.Products))
	for _, t := range f.Tenants {
		fmt.Fprintf(out, "Tenant %s: %d roles, %d products, %d users\n",
			t.Name, len(t.Roles), len(t.Products), len(t.Users))
	}
}

// confirm asks a yes/no question; a declined prompt is not an error
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return true, nil
}
