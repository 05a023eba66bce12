package tenancy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/models"
)

const (
	msgAppRoleNotFound    = "App role mapping not found"
	msgProductNotFound    = "Product not found"
	msgRoleAlreadyMapped  = "This role is already mapped to this product in this tenant"
	msgAnotherMappingUsed = "Another mapping already exists for this product and role"
)

// AppRoleService manages which roles may use which products
type AppRoleService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewAppRoleService creates an app-role mapping service
func NewAppRoleService(db *gorm.DB, logger zerolog.Logger) *AppRoleService {
	return &AppRoleService{
		db:     db,
		logger: logger.With().Str("component", "app_role_service").Logger(),
	}
}

// AppRoleInput creates a mapping; TenantID is ignored in favour of the caller's tenant
type AppRoleInput struct {
	ProductID int64
	RoleID    int64
	TenantID  *int64
}

// AppRolePatch is a partial update; nil fields are left unchanged
type AppRolePatch struct {
	ProductID *int64
	RoleID    *int64
	TenantID  *int64
}

// AppRoleFilter narrows List; nil fields do not filter
type AppRoleFilter struct {
	ProductID *int64
	RoleID    *int64
}

func (s *AppRoleService) List(ctx context.Context, tenantID int64, filter AppRoleFilter) ([]models.AppRoleMapping, error) {
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}

	mappings := []models.AppRoleMapping{}
	if err := query.Order("id").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to list app role mappings: %w", err)
	}
	return mappings, nil
}

func (s *AppRoleService) Get(ctx context.Context, tenantID, id int64) (*models.AppRoleMapping, error) {
	var mapping models.AppRoleMapping
	if err := models.FindInTenant(s.db.WithContext(ctx), "id", id, tenantID, &mapping); err != nil {
		return nil, notFoundOr(err, msgAppRoleNotFound)
	}
	return &mapping, nil
}

// Create maps a tenant role to a product. One mapping per (product, role) per tenant.
func (s *AppRoleService) Create(ctx context.Context, tenantID int64, in AppRoleInput) (*models.AppRoleMapping, error) {
	mapping := &models.AppRoleMapping{
		ProductID: in.ProductID,
		RoleID:    in.RoleID,
		TenantID:  tenantID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRole(tx, tenantID, in.RoleID); err != nil {
			return err
		}
		if err := requireProduct(tx, in.ProductID); err != nil {
			return err
		}
		if err := ensureAppRoleFree(tx, tenantID, in.ProductID, in.RoleID, 0, msgRoleAlreadyMapped); err != nil {
			return err
		}
		return tx.Create(mapping).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgRoleAlreadyMapped)
		}
		return nil, err
	}

	s.logger.Info().
		Int64("tenant_id", tenantID).
		Int64("product_id", mapping.ProductID).
		Int64("role_id", mapping.RoleID).
		Msg("Role mapped to product")
	return mapping, nil
}

// Update re-validates changed references, re-checks uniqueness excluding the
// row itself and forces tenant_id back to the caller's tenant.
func (s *AppRoleService) Update(ctx context.Context, tenantID, id int64, patch AppRolePatch) (*models.AppRoleMapping, error) {
	var mapping models.AppRoleMapping

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "id", id, tenantID, &mapping); err != nil {
			return notFoundOr(err, msgAppRoleNotFound)
		}

		if patch.RoleID != nil {
			if err := requireRole(tx, tenantID, *patch.RoleID); err != nil {
				return err
			}
			mapping.RoleID = *patch.RoleID
		}
		if patch.ProductID != nil {
			if err := requireProduct(tx, *patch.ProductID); err != nil {
				return err
			}
			mapping.ProductID = *patch.ProductID
		}
		if patch.ProductID != nil || patch.RoleID != nil {
			if err := ensureAppRoleFree(tx, tenantID, mapping.ProductID, mapping.RoleID, id, msgAnotherMappingUsed); err != nil {
				return err
			}
		}

		mapping.TenantID = tenantID
		return tx.Save(&mapping).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgAnotherMappingUsed)
		}
		return nil, err
	}
	return &mapping, nil
}

func (s *AppRoleService) Delete(ctx context.Context, tenantID, id int64) (*models.AppRoleMapping, error) {
	var mapping models.AppRoleMapping

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "id", id, tenantID, &mapping); err != nil {
			return notFoundOr(err, msgAppRoleNotFound)
		}
		return tx.Delete(&mapping).Error
	})
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func ensureAppRoleFree(tx *gorm.DB, tenantID, productID, roleID, excludeID int64, message string) error {
	var count int64
	err := tx.Model(&models.AppRoleMapping{}).
		Where("tenant_id = ? AND product_id = ? AND role_id = ? AND id <> ?", tenantID, productID, roleID, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return conflict(message)
	}
	return nil
}

// requireProduct fails with ErrNotFound unless the product is in the catalogue
func requireProduct(tx *gorm.DB, productID int64) error {
	var count int64
	if err := tx.Model(&models.Product{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound(msgProductNotFound)
	}
	return nil
}
