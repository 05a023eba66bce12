package tenancy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireMessage(t *testing.T, err error, want string) {
	t.Helper()
	msg, ok := Message(err)
	require.True(t, ok, "expected a tenancy error, got %v", err)
	assert.Equal(t, want, msg)
}

func TestRoleUserService_CreateRejectsForeignRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	foreignRole := f.role(t, globex, "admin")
	alice := f.user(t, acme, "alice", "alice@acme.test")

	// a payload tenant id naming the role's tenant does not help
	_, err := f.roleUsers.Create(ctx, acme, RoleUserInput{RoleID: foreignRole, UserID: alice, TenantID: int64Ptr(globex)})
	require.ErrorIs(t, err, ErrNotFound)
	requireMessage(t, err, "Role not found in this tenant")
}

func TestRoleUserService_CreateRejectsForeignUser(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	role := f.role(t, acme, "admin")
	carol := f.user(t, globex, "carol", "carol@globex.test")

	_, err := f.roleUsers.Create(context.Background(), acme, RoleUserInput{RoleID: role, UserID: carol})
	require.ErrorIs(t, err, ErrNotFound)
	requireMessage(t, err, "User not found in this tenant")
}

func TestRoleUserService_CreateStampsTenant(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	role := f.role(t, acme, "admin")
	alice := f.user(t, acme, "alice", "alice@acme.test")

	mapping, err := f.roleUsers.Create(context.Background(), acme, RoleUserInput{RoleID: role, UserID: alice, TenantID: int64Ptr(globex)})
	require.NoError(t, err)
	assert.Equal(t, acme, mapping.TenantID)
}

func TestRoleUserService_DuplicateAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	role := f.role(t, acme, "admin")
	alice := f.user(t, acme, "alice", "alice@acme.test")

	_, err := f.roleUsers.Create(ctx, acme, RoleUserInput{RoleID: role, UserID: alice})
	require.NoError(t, err)

	_, err = f.roleUsers.Create(ctx, acme, RoleUserInput{RoleID: role, UserID: alice})
	require.ErrorIs(t, err, ErrConflict)
	requireMessage(t, err, "This role is already assigned to this user in this tenant")
}

func TestRoleUserService_UpdateForcesTenantAndChecksConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	admin := f.role(t, acme, "admin")
	viewer := f.role(t, acme, "viewer")
	alice := f.user(t, acme, "alice", "alice@acme.test")

	first, err := f.roleUsers.Create(ctx, acme, RoleUserInput{RoleID: admin, UserID: alice})
	require.NoError(t, err)
	second, err := f.roleUsers.Create(ctx, acme, RoleUserInput{RoleID: viewer, UserID: alice})
	require.NoError(t, err)

	_, err = f.roleUsers.Update(ctx, acme, second.ID, RoleUserPatch{RoleID: int64Ptr(admin)})
	assert.ErrorIs(t, err, ErrConflict)

	// re-saving its own values is not a conflict
	updated, err := f.roleUsers.Update(ctx, acme, first.ID, RoleUserPatch{RoleID: int64Ptr(admin), TenantID: int64Ptr(globex)})
	require.NoError(t, err)
	assert.Equal(t, acme, updated.TenantID)

	reloaded, err := f.roleUsers.Get(ctx, acme, first.ID)
	require.NoError(t, err)
	assert.Equal(t, acme, reloaded.TenantID)
}

func TestRoleUserService_OtherTenantCannotSeeMapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	role := f.role(t, acme, "admin")
	alice := f.user(t, acme, "alice", "alice@acme.test")

	mapping, err := f.roleUsers.Create(ctx, acme, RoleUserInput{RoleID: role, UserID: alice})
	require.NoError(t, err)

	_, err = f.roleUsers.Get(ctx, globex, mapping.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.roleUsers.Update(ctx, globex, mapping.ID, RoleUserPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.roleUsers.Delete(ctx, globex, mapping.ID)
	require.ErrorIs(t, err, ErrNotFound)
	requireMessage(t, err, "Role user mapping not found")

	deleted, err := f.roleUsers.Delete(ctx, acme, mapping.ID)
	require.NoError(t, err)
	assert.Equal(t, mapping.ID, deleted.ID)
}

func TestRoleUserService_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	admin := f.role(t, acme, "admin")
	viewer := f.role(t, acme, "viewer")
	alice := f.user(t, acme, "alice", "alice@acme.test")
	bob := f.user(t, acme, "bob", "bob@acme.test")

	for _, in := range []RoleUserInput{
		{RoleID: admin, UserID: alice},
		{RoleID: viewer, UserID: alice},
		{RoleID: viewer, UserID: bob},
	} {
		_, err := f.roleUsers.Create(ctx, acme, in)
		require.NoError(t, err)
	}

	all, err := f.roleUsers.List(ctx, acme, RoleUserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byUser, err := f.roleUsers.List(ctx, acme, RoleUserFilter{UserID: int64Ptr(alice)})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byBoth, err := f.roleUsers.List(ctx, acme, RoleUserFilter{UserID: int64Ptr(bob), RoleID: int64Ptr(viewer)})
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, bob, byBoth[0].UserID)
}

func TestAppRoleService_DuplicatePairPerTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	crm := f.product(t, "crm")
	acmeAdmin := f.role(t, acme, "admin")
	globexAdmin := f.role(t, globex, "admin")

	_, err := f.appRoles.Create(ctx, acme, AppRoleInput{ProductID: crm, RoleID: acmeAdmin})
	require.NoError(t, err)

	_, err = f.appRoles.Create(ctx, acme, AppRoleInput{ProductID: crm, RoleID: acmeAdmin})
	require.ErrorIs(t, err, ErrConflict)
	requireMessage(t, err, "This role is already mapped to this product in this tenant")

	mapping, err := f.appRoles.Create(ctx, globex, AppRoleInput{ProductID: crm, RoleID: globexAdmin})
	require.NoError(t, err)
	assert.Equal(t, globex, mapping.TenantID)
}

func TestAppRoleService_CreateRejectsForeignRole(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	crm := f.product(t, "crm")
	foreignRole := f.role(t, globex, "admin")

	_, err := f.appRoles.Create(context.Background(), acme, AppRoleInput{ProductID: crm, RoleID: foreignRole, TenantID: int64Ptr(globex)})
	require.ErrorIs(t, err, ErrNotFound)
	requireMessage(t, err, "Role not found in this tenant")
}

func TestAppRoleService_CreateRejectsUnknownProduct(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	role := f.role(t, acme, "admin")

	_, err := f.appRoles.Create(context.Background(), acme, AppRoleInput{ProductID: 404, RoleID: role})
	require.ErrorIs(t, err, ErrNotFound)
	requireMessage(t, err, "Product not found")
}

func TestAppRoleService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	crm := f.product(t, "crm")
	billing := f.product(t, "billing")
	admin := f.role(t, acme, "admin")
	foreignRole := f.role(t, globex, "admin")

	first, err := f.appRoles.Create(ctx, acme, AppRoleInput{ProductID: crm, RoleID: admin})
	require.NoError(t, err)
	second, err := f.appRoles.Create(ctx, acme, AppRoleInput{ProductID: billing, RoleID: admin})
	require.NoError(t, err)

	_, err = f.appRoles.Update(ctx, acme, second.ID, AppRolePatch{ProductID: int64Ptr(crm)})
	require.ErrorIs(t, err, ErrConflict)
	requireMessage(t, err, "Another mapping already exists for this product and role")

	_, err = f.appRoles.Update(ctx, acme, first.ID, AppRolePatch{RoleID: int64Ptr(foreignRole)})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.appRoles.Update(ctx, acme, first.ID, AppRolePatch{TenantID: int64Ptr(globex)})
	require.NoError(t, err)
	assert.Equal(t, acme, updated.TenantID)

	_, err = f.appRoles.Update(ctx, globex, first.ID, AppRolePatch{})
	require.ErrorIs(t, err, ErrNotFound)
	requireMessage(t, err, "App role mapping not found")
}

func TestAppRoleService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	crm := f.product(t, "crm")
	billing := f.product(t, "billing")
	admin := f.role(t, acme, "admin")

	a, err := f.appRoles.Create(ctx, acme, AppRoleInput{ProductID: crm, RoleID: admin})
	require.NoError(t, err)
	_, err = f.appRoles.Create(ctx, acme, AppRoleInput{ProductID: billing, RoleID: admin})
	require.NoError(t, err)

	byProduct, err := f.appRoles.List(ctx, acme, AppRoleFilter{ProductID: int64Ptr(crm)})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, a.ID, byProduct[0].ID)

	byRole, err := f.appRoles.List(ctx, acme, AppRoleFilter{RoleID: int64Ptr(admin)})
	require.NoError(t, err)
	assert.Len(t, byRole, 2)

	_, err = f.appRoles.Delete(ctx, acme, a.ID)
	require.NoError(t, err)
	_, err = f.appRoles.Get(ctx, acme, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTenantProductService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.tenant(t, "acme")
	globex := f.tenant(t, "globex")
	crm := f.product(t, "crm")

	mapping, err := f.tenantProducts.Create(ctx, acme, TenantProductInput{ProductID: crm, TenantID: int64Ptr(globex)})
	require.NoError(t, err)
	assert.Equal(t, acme, mapping.TenantID)

	_, err = f.tenantProducts.Create(ctx, acme, TenantProductInput{ProductID: crm})
	require.ErrorIs(t, err, ErrConflict)
	requireMessage(t, err, "This product is already mapped to this tenant")

	_, err = f.tenantProducts.Create(ctx, acme, TenantProductInput{ProductID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.tenantProducts.Create(ctx, globex, TenantProductInput{ProductID: crm})
	require.NoError(t, err)

	list, err := f.tenantProducts.List(ctx, acme, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.tenantProducts.Get(ctx, globex, mapping.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.tenantProducts.Delete(ctx, acme, mapping.ID)
	require.NoError(t, err)

	list, err = f.tenantProducts.List(ctx, acme, int64Ptr(crm))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIsUniqueViolation(t *testing.T) {
	f := newFixture(t)
	acme := f.tenant(t, "acme")
	f.role(t, acme, "admin")

	err := f.db.Exec("INSERT INTO roles (tenant_id, role_name) VALUES (?, ?)", acme, "admin").Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}
