package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// TenantProductMappingRequest subscribes the caller's tenant to a product
type TenantProductMappingRequest struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	TenantID  *int64 `json:"tenant_id"`
}

// @Router /api/tenant-product-mappings [get]
// @Param product_id query int false "Filter by product"
func (s *Server) listTenantProductMappings(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	productID, ok := optionalID(c, "product_id")
	if !ok {
		return
	}

	mappings, err := s.tenantProducts.List(c.Request.Context(), authCtx.TenantID, productID)
	if err != nil {
		s.respondServiceError(c, err, "Failed to list tenant product mappings")
		return
	}

	respondData(c, http.StatusOK, mappings, "Tenant product mappings fetched successfully")
}

// @Router /api/tenant-product-mappings [post]
func (s *Server) createTenantProductMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}

	var req TenantProductMappingRequest
	if !s.bindJSON(c, &req) {
		return
	}

	mapping, err := s.tenantProducts.Create(c.Request.Context(), authCtx.TenantID, tenancy.TenantProductInput{
		ProductID: req.ProductID,
		TenantID:  req.TenantID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to create tenant product mapping")
		return
	}

	respondData(c, http.StatusCreated, mapping, "Tenant product mapping created successfully")
}

// @Router /api/tenant-product-mappings/{id} [get]
func (s *Server) getTenantProductMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	mapping, err := s.tenantProducts.Get(c.Request.Context(), authCtx.TenantID, id)
	if err != nil {
		s.respondServiceError(c, err, "Failed to get tenant product mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "Tenant product mapping fetched successfully")
}

// @Router /api/tenant-product-mappings/{id} [delete]
func (s *Server) deleteTenantProductMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	mapping, err := s.tenantProducts.Delete(c.Request.Context(), authCtx.TenantID, id)
	if err != nil {
		s.respondServiceError(c, err, "Failed to delete tenant product mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "Tenant product mapping deleted successfully")
}
