// Package seed loads tenants, roles, products and users from a YAML file.
//
// Roles and products have no HTTP surface, so seeding is how they get into
// the database. Applying a file is idempotent: rows are matched by name (or
// email for users) and only missing rows are created.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/models"
)

// File is the seed document
type File struct {
	Products []Product `yaml:"products"`
	Tenants  []Tenant  `yaml:"tenants"`
}

type Product struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Tenant struct {
	Name     string   `yaml:"name"`
	Roles    []string `yaml:"roles"`
	Products []string `yaml:"products"`
	// RoleProducts maps a role name to the products it may use
	RoleProducts map[string][]string `yaml:"role_products"`
	Users        []User              `yaml:"users"`
}

type User struct {
	Username string   `yaml:"username"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

// Result counts the rows created by Apply
type Result struct {
	Tenants        int
	Roles          int
	Products       int
	Users          int
	RoleUsers      int
	AppRoles       int
	TenantProducts int
}

// Load reads and validates a seed file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document and checks its references
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names are present and every reference resolves within the file
func (f *File) Validate() error {
	var errs []error

	products := make(map[string]bool, len(f.Products))
	for i, p := range f.Products {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("products[%d]: name is required", i))
		}
		products[p.Name] = true
	}

	for i, t := range f.Tenants {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("tenants[%d]: name is required", i))
			continue
		}
		roles := make(map[string]bool, len(t.Roles))
		for _, r := range t.Roles {
			roles[r] = true
		}
		for _, p := range t.Products {
			if !products[p] {
				errs = append(errs, fmt.Errorf("tenant %q: unknown product %q", t.Name, p))
			}
		}
		for role, ps := range t.RoleProducts {
			if !roles[role] {
				errs = append(errs, fmt.Errorf("tenant %q: role_products references unknown role %q", t.Name, role))
			}
			for _, p := range ps {
				if !products[p] {
					errs = append(errs, fmt.Errorf("tenant %q: role %q references unknown product %q", t.Name, role, p))
				}
			}
		}
		for _, u := range t.Users {
			if u.Email == "" || u.Username == "" || u.Password == "" {
				errs = append(errs, fmt.Errorf("tenant %q: users need username, email and password", t.Name))
			}
			for _, r := range u.Roles {
				if !roles[r] {
					errs = append(errs, fmt.Errorf("tenant %q: user %q references unknown role %q", t.Name, u.Email, r))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// Apply upserts the file in a single transaction
func Apply(ctx context.Context, db *gorm.DB, f *File, logger zerolog.Logger) (*Result, error) {
	result := &Result{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productIDs := make(map[string]int64, len(f.Products))
		for _, p := range f.Products {
			product := models.Product{ProductName: p.Name, Description: p.Description}
			created, err := firstOrCreate(tx, &product, "product_name = ?", p.Name)
			if err != nil {
				return fmt.Errorf("product %q: %w", p.Name, err)
			}
			if created {
				result.Products++
			}
			productIDs[p.Name] = product.ProductID
		}

		for _, t := range f.Tenants {
			if err := applyTenant(tx, t, productIDs, result); err != nil {
				return fmt.Errorf("tenant %q: %w", t.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("tenants", result.Tenants).
		Int("roles", result.Roles).
		Int("products", result.Products).
		Int("users", result.Users).
		Msg("Seed applied")
	return result, nil
}

func applyTenant(tx *gorm.DB, t Tenant, productIDs map[string]int64, result *Result) error {
	tenant := models.Tenant{Name: t.Name}
	created, err := firstOrCreate(tx, &tenant, "name = ?", t.Name)
	if err != nil {
		return err
	}
	if created {
		result.Tenants++
	}

	roleIDs := make(map[string]int64, len(t.Roles))
	for _, name := range t.Roles {
		role := models.Role{TenantID: tenant.TenantID, RoleName: name}
		created, err := firstOrCreate(tx, &role, "tenant_id = ? AND role_name = ?", tenant.TenantID, name)
		if err != nil {
			return fmt.Errorf("role %q: %w", name, err)
		}
		if created {
			result.Roles++
		}
		roleIDs[name] = role.RoleID
	}

	for _, name := range t.Products {
		mapping := models.TenantProductMapping{TenantID: tenant.TenantID, ProductID: productIDs[name]}
		created, err := firstOrCreate(tx, &mapping, "tenant_id = ? AND product_id = ?", mapping.TenantID, mapping.ProductID)
		if err != nil {
			return fmt.Errorf("product subscription %q: %w", name, err)
		}
		if created {
			result.TenantProducts++
		}
	}

	for role, products := range t.RoleProducts {
		for _, name := range products {
			mapping := models.AppRoleMapping{TenantID: tenant.TenantID, RoleID: roleIDs[role], ProductID: productIDs[name]}
			created, err := firstOrCreate(tx, &mapping, "tenant_id = ? AND product_id = ? AND role_id = ?",
				mapping.TenantID, mapping.ProductID, mapping.RoleID)
			if err != nil {
				return fmt.Errorf("role %q product %q: %w", role, name, err)
			}
			if created {
				result.AppRoles++
			}
		}
	}

	for _, u := range t.Users {
		if err := applyUser(tx, tenant.TenantID, u, roleIDs, result); err != nil {
			return fmt.Errorf("user %q: %w", u.Email, err)
		}
	}
	return nil
}

// applyUser creates a missing user; existing users keep their password
func applyUser(tx *gorm.DB, tenantID int64, u User, roleIDs map[string]int64, result *Result) error {
	var user models.User
	err := tx.Where("tenant_id = ? AND email = ?", tenantID, u.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}
		user = models.User{
			TenantID:       tenantID,
			Username:       u.Username,
			Email:          u.Email,
			HashedPassword: hash,
			IsActive:       true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		result.Users++
	case err != nil:
		return err
	}

	for _, role := range u.Roles {
		mapping := models.RoleUserMapping{TenantID: tenantID, UserID: user.UserID, RoleID: roleIDs[role]}
		created, err := firstOrCreate(tx, &mapping, "tenant_id = ? AND user_id = ? AND role_id = ?",
			tenantID, user.UserID, mapping.RoleID)
		if err != nil {
			return fmt.Errorf("role %q: %w", role, err)
		}
		if created {
			result.RoleUsers++
		}
	}
	return nil
}

// firstOrCreate loads the row matching query into model, creating model when none exists
func firstOrCreate[T any](tx *gorm.DB, model *T, query string, args ...any) (bool, error) {
	res := tx.Where(query, args...).Limit(1).Find(model)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if err := tx.Create(model).Error; err != nil {
		return false, err
	}
	return true, nil
}
