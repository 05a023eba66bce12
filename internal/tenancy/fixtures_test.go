package tenancy

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/database"
	"github.com/tenantgate/tenantgate/internal/models"
)

type fixture struct {
	db             *gorm.DB
	users          *UserService
	roleUsers      *RoleUserService
	appRoles       *AppRoleService
	tenantProducts *TenantProductService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	log := zerolog.Nop()
	return &fixture{
		db:             db,
		users:          NewUserService(db, log),
		roleUsers:      NewRoleUserService(db, log),
		appRoles:       NewAppRoleService(db, log),
		tenantProducts: NewTenantProductService(db, log),
	}
}

func (f *fixture) tenant(t *testing.T, name string) int64 {
	t.Helper()
	tenant := &models.Tenant{Name: name}
	require.NoError(t, f.db.Create(tenant).Error)
	return tenant.TenantID
}

func (f *fixture) role(t *testing.T, tenantID int64, name string) int64 {
	t.Helper()
	role := &models.Role{TenantID: tenantID, RoleName: name}
	require.NoError(t, f.db.Create(role).Error)
	return role.RoleID
}

func (f *fixture) product(t *testing.T, name string) int64 {
	t.Helper()
	product := &models.Product{ProductName: name, Description: name + " product"}
	require.NoError(t, f.db.Create(product).Error)
	return product.ProductID
}

func (f *fixture) user(t *testing.T, tenantID int64, username, email string) int64 {
	t.Helper()
	user, err := f.users.Create(context.Background(), tenantID, CreateUserInput{
		Username: username,
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return user.UserID
}

func int64Ptr(v int64) *int64 {
	return &v
}
