package tenancy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/models"
)

const (
	msgRoleNotInTenant     = "Role not found in this tenant"
	msgRoleUserNotFound    = "Role user mapping not found"
	msgRoleAlreadyAssigned = "This role is already assigned to this user in this tenant"
)

// RoleUserService manages role-to-user grants
type RoleUserService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewRoleUserService creates a role-user mapping service
func NewRoleUserService(db *gorm.DB, logger zerolog.Logger) *RoleUserService {
	return &RoleUserService{
		db:     db,
		logger: logger.With().Str("component", "role_user_service").Logger(),
	}
}

// RoleUserInput creates a mapping. TenantID is accepted for wire
// compatibility and always replaced by the caller's tenant.
type RoleUserInput struct {
	RoleID   int64
	UserID   int64
	TenantID *int64
}

// RoleUserPatch is a partial update; nil fields are left unchanged
type RoleUserPatch struct {
	RoleID   *int64
	UserID   *int64
	TenantID *int64
}

// RoleUserFilter narrows List; nil fields do not filter
type RoleUserFilter struct {
	UserID *int64
	RoleID *int64
}

func (s *RoleUserService) List(ctx context.Context, tenantID int64, filter RoleUserFilter) ([]models.RoleUserMapping, error) {
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}

	mappings := []models.RoleUserMapping{}
	if err := query.Order("id").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to list role user mappings: %w", err)
	}
	return mappings, nil
}

func (s *RoleUserService) Get(ctx context.Context, tenantID, id int64) (*models.RoleUserMapping, error) {
	var mapping models.RoleUserMapping
	if err := models.FindInTenant(s.db.WithContext(ctx), "id", id, tenantID, &mapping); err != nil {
		return nil, notFoundOr(err, msgRoleUserNotFound)
	}
	return &mapping, nil
}

// Create grants a role to a user; both must belong to the tenant
func (s *RoleUserService) Create(ctx context.Context, tenantID int64, in RoleUserInput) (*models.RoleUserMapping, error) {
	mapping := &models.RoleUserMapping{
		RoleID:   in.RoleID,
		UserID:   in.UserID,
		TenantID: tenantID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, tenantID, in.UserID); err != nil {
			return err
		}
		if err := requireRole(tx, tenantID, in.RoleID); err != nil {
			return err
		}
		if err := s.ensureUnassigned(tx, tenantID, in.UserID, in.RoleID, 0); err != nil {
			return err
		}
		return tx.Create(mapping).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgRoleAlreadyAssigned)
		}
		return nil, err
	}

	s.logger.Info().
		Int64("tenant_id", tenantID).
		Int64("role_id", mapping.RoleID).
		Int64("user_id", mapping.UserID).
		Msg("Role assigned to user")
	return mapping, nil
}

// Update re-validates changed references and pins the row to the caller's tenant
func (s *RoleUserService) Update(ctx context.Context, tenantID, id int64, patch RoleUserPatch) (*models.RoleUserMapping, error) {
	var mapping models.RoleUserMapping

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "id", id, tenantID, &mapping); err != nil {
			return notFoundOr(err, msgRoleUserNotFound)
		}

		if patch.UserID != nil {
			if err := requireUser(tx, tenantID, *patch.UserID); err != nil {
				return err
			}
			mapping.UserID = *patch.UserID
		}
		if patch.RoleID != nil {
			if err := requireRole(tx, tenantID, *patch.RoleID); err != nil {
				return err
			}
			mapping.RoleID = *patch.RoleID
		}
		if patch.UserID != nil || patch.RoleID != nil {
			if err := s.ensureUnassigned(tx, tenantID, mapping.UserID, mapping.RoleID, id); err != nil {
				return err
			}
		}

		mapping.TenantID = tenantID
		return tx.Save(&mapping).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgRoleAlreadyAssigned)
		}
		return nil, err
	}
	return &mapping, nil
}

func (s *RoleUserService) Delete(ctx context.Context, tenantID, id int64) (*models.RoleUserMapping, error) {
	var mapping models.RoleUserMapping

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "id", id, tenantID, &mapping); err != nil {
			return notFoundOr(err, msgRoleUserNotFound)
		}
		return tx.Delete(&mapping).Error
	})
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (s *RoleUserService) ensureUnassigned(tx *gorm.DB, tenantID, userID, roleID, excludeID int64) error {
	var count int64
	err := tx.Model(&models.RoleUserMapping{}).
		Where("tenant_id = ? AND user_id = ? AND role_id = ? AND id <> ?", tenantID, userID, roleID, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return conflict(msgRoleAlreadyAssigned)
	}
	return nil
}

// requireUser fails with ErrNotFound unless the user belongs to the tenant
func requireUser(tx *gorm.DB, tenantID, userID int64) error {
	ok, err := models.ExistsInTenant[models.User](tx, "user_id", userID, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(msgUserNotInTenant)
	}
	return nil
}

// requireRole fails with ErrNotFound unless the role belongs to the tenant
func requireRole(tx *gorm.DB, tenantID, roleID int64) error {
	ok, err := models.ExistsInTenant[models.Role](tx, "role_id", roleID, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(msgRoleNotInTenant)
	}
	return nil
}
