package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantgate/tenantgate/internal/database"
	"github.com/tenantgate/tenantgate/internal/models"
)

const sample = `
products:
  - name: crm
    description: Customer relationship management
  - name: billing
tenants:
  - name: acme
    roles: [admin, viewer]
    products: [crm, billing]
    role_products:
      admin: [crm, billing]
      viewer: [crm]
    users:
      - username: alice
        email: alice@acme.test
        password: correct-horse
        roles: [admin, viewer]
  - name: globex
    roles: [admin]
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, f.Products, 2)
	require.Len(t, f.Tenants, 2)
	assert.Equal(t, []string{"crm"}, f.Tenants[0].RoleProducts["viewer"])
	assert.Equal(t, "alice@acme.test", f.Tenants[0].Users[0].Email)
}

func TestParse_UnknownReferences(t *testing.T) {
	_, err := Parse([]byte(`
products: [{name: crm}]
tenants:
  - name: acme
    roles: [admin]
    products: [erp]
    users:
      - {username: bob, email: bob@acme.test, password: pw, roles: [owner]}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown product "erp"`)
	assert.Contains(t, err.Error(), `unknown role "owner"`)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("tenants: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Tenants, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	first, err := Apply(context.Background(), db, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, &Result{
		Tenants:        2,
		Roles:          3,
		Products:       2,
		Users:          1,
		RoleUsers:      2,
		AppRoles:       3,
		TenantProducts: 2,
	}, first)

	second, err := Apply(context.Background(), db, f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, &Result{}, second)

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(3), roles)

	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@acme.test").First(&user).Error)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.HashedPassword)
}
