package tenancy

import (
	"context"
	"fmt"

	"github.com/tenantgate/tenantgate/internal/models"
)

const userProductsQuery = `
SELECT DISTINCT products.product_id, products.product_name, products.description
FROM products
JOIN app_role_mappings ON app_role_mappings.product_id = products.product_id AND app_role_mappings.tenant_id = ?
JOIN role_user_mappings ON role_user_mappings.role_id = app_role_mappings.role_id AND role_user_mappings.tenant_id = ?
JOIN tenant_product_mappings ON tenant_product_mappings.product_id = products.product_id AND tenant_product_mappings.tenant_id = ?
WHERE role_user_mappings.user_id = ?
ORDER BY products.product_id`

// Products returns the products a user reaches through its roles, limited to
// products the tenant is subscribed to
func (s *UserService) Products(ctx context.Context, tenantID, userID int64) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).
		Raw(userProductsQuery, tenantID, tenantID, tenantID, userID).
		Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user products: %w", err)
	}
	return products, nil
}
