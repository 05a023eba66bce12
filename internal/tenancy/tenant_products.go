package tenancy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/models"
)

const (
	msgTenantProductNotFound = "Tenant product mapping not found"
	msgProductAlreadyMapped  = "This product is already mapped to this tenant"
)

// TenantProductService manages a tenant's product subscriptions
type TenantProductService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewTenantProductService creates a tenant-product mapping service
func NewTenantProductService(db *gorm.DB, logger zerolog.Logger) *TenantProductService {
	return &TenantProductService{
		db:     db,
		logger: logger.With().Str("component", "tenant_product_service").Logger(),
	}
}

// TenantProductInput creates a subscription; TenantID is ignored
type TenantProductInput struct {
	ProductID int64
	TenantID  *int64
}

func (s *TenantProductService) List(ctx context.Context, tenantID int64, productID *int64) ([]models.TenantProductMapping, error) {
	query := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	mappings := []models.TenantProductMapping{}
	if err := query.Order("id").Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenant product mappings: %w", err)
	}
	return mappings, nil
}

func (s *TenantProductService) Get(ctx context.Context, tenantID, id int64) (*models.TenantProductMapping, error) {
	var mapping models.TenantProductMapping
	if err := models.FindInTenant(s.db.WithContext(ctx), "id", id, tenantID, &mapping); err != nil {
		return nil, notFoundOr(err, msgTenantProductNotFound)
	}
	return &mapping, nil
}

func (s *TenantProductService) Create(ctx context.Context, tenantID int64, in TenantProductInput) (*models.TenantProductMapping, error) {
	mapping := &models.TenantProductMapping{
		TenantID:  tenantID,
		ProductID: in.ProductID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProduct(tx, in.ProductID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.TenantProductMapping{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, in.ProductID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict(msgProductAlreadyMapped)
		}
		return tx.Create(mapping).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict(msgProductAlreadyMapped)
		}
		return nil, err
	}

	s.logger.Info().
		Int64("tenant_id", tenantID).
		Int64("product_id", mapping.ProductID).
		Msg("Tenant subscribed to product")
	return mapping, nil
}

func (s *TenantProductService) Delete(ctx context.Context, tenantID, id int64) (*models.TenantProductMapping, error) {
	var mapping models.TenantProductMapping

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := models.FindInTenant(tx, "id", id, tenantID, &mapping); err != nil {
			return notFoundOr(err, msgTenantProductNotFound)
		}
		return tx.Delete(&mapping).Error
	})
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}
