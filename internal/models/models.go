package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant is the isolation boundary every other entity is scoped by
type Tenant struct {
	TenantID  int64     `json:"tenant_id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Role is a tenant-owned role; names are unique within a tenant
type Role struct {
	RoleID   int64  `json:"role_id" gorm:"primaryKey;autoIncrement"`
	TenantID int64  `json:"tenant_id" gorm:"not null;uniqueIndex:idx_roles_tenant_name"`
	RoleName string `json:"role_name" gorm:"not null;uniqueIndex:idx_roles_tenant_name"`
}

// Product is a global catalogue entry that tenants subscribe to
type Product struct {
	ProductID   int64  `json:"product_id" gorm:"primaryKey;autoIncrement"`
	ProductName string `json:"product_name" gorm:"not null;uniqueIndex"`
	Description string `json:"description"`
}

// User is a tenant member account
type User struct {
	UserID         int64     `json:"user_id" gorm:"primaryKey;autoIncrement"`
	TenantID       int64     `json:"tenant_id" gorm:"not null;uniqueIndex:idx_users_tenant_email"`
	Username       string    `json:"username" gorm:"not null"`
	Email          string    `json:"email" gorm:"not null;uniqueIndex:idx_users_tenant_email"`
	HashedPassword string    `json:"-" gorm:"not null"`
	IsActive       bool      `json:"is_active" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RoleUserMapping grants a role to a user within a tenant
type RoleUserMapping struct {
	ID       int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	RoleID   int64 `json:"role_id" gorm:"not null;uniqueIndex:idx_rum_tenant_user_role"`
	UserID   int64 `json:"user_id" gorm:"not null;uniqueIndex:idx_rum_tenant_user_role"`
	TenantID int64 `json:"tenant_id" gorm:"not null;uniqueIndex:idx_rum_tenant_user_role"`
}

// AppRoleMapping grants a role access to a product within a tenant
type AppRoleMapping struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID int64 `json:"product_id" gorm:"not null;uniqueIndex:idx_arm_tenant_product_role"`
	RoleID    int64 `json:"role_id" gorm:"not null;uniqueIndex:idx_arm_tenant_product_role"`
	TenantID  int64 `json:"tenant_id" gorm:"not null;uniqueIndex:idx_arm_tenant_product_role"`
}

// TenantProductMapping subscribes a tenant to a product
type TenantProductMapping struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID  int64 `json:"tenant_id" gorm:"not null;uniqueIndex:idx_tpm_tenant_product"`
	ProductID int64 `json:"product_id" gorm:"not null;uniqueIndex:idx_tpm_tenant_product"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&Tenant{}, &Role{}, &Product{}, &User{},
		&RoleUserMapping{}, &AppRoleMapping{}, &TenantProductMapping{},
	}

	return db.AutoMigrate(models...)
}

// FindInTenant loads a row by primary key column, scoped to a tenant
func FindInTenant[T any](db *gorm.DB, idColumn string, id, tenantID int64, model *T) error {
	return db.Where(idColumn+" = ? AND tenant_id = ?", id, tenantID).First(model).Error
}

// ExistsInTenant reports whether a row with the given id exists in the tenant
func ExistsInTenant[T any](db *gorm.DB, idColumn string, id, tenantID int64) (bool, error) {
	var count int64
	err := db.Model(new(T)).Where(idColumn+" = ? AND tenant_id = ?", id, tenantID).Count(&count).Error
	return count > 0, err
}
