package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// AppRoleMappingRequest maps a role to a product
type AppRoleMappingRequest struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	RoleID    int64  `json:"role_id" binding:"required,gt=0"`
	TenantID  *int64 `json:"tenant_id"`
}

// AppRoleMappingPatch is a partial update
type AppRoleMappingPatch struct {
	ProductID *int64 `json:"product_id" binding:"omitempty,gt=0"`
	RoleID    *int64 `json:"role_id" binding:"omitempty,gt=0"`
	TenantID  *int64 `json:"tenant_id"`
}

// @Router /api/app-role-mappings [get]
// @Param product_id query int false "Filter by product"
// @Param role_id query int false "Filter by role"
func (s *Server) listAppRoleMappings(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	productID, ok := optionalID(c, "product_id")
	if !ok {
		return
	}
	roleID, ok := optionalID(c, "role_id")
	if !ok {
		return
	}

	mappings, err := s.appRoles.List(c.Request.Context(), authCtx.TenantID, tenancy.AppRoleFilter{
		ProductID: productID,
		RoleID:    roleID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to list app role mappings")
		return
	}

	respondData(c, http.StatusOK, mappings, "App role mappings fetched successfully")
}

// @Router /api/app-role-mappings [post]
func (s *Server) createAppRoleMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}

	var req AppRoleMappingRequest
	if !s.bindJSON(c, &req) {
		return
	}

	mapping, err := s.appRoles.Create(c.Request.Context(), authCtx.TenantID, tenancy.AppRoleInput{
		ProductID: req.ProductID,
		RoleID:    req.RoleID,
		TenantID:  req.TenantID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to create app role mapping")
		return
	}

	respondData(c, http.StatusCreated, mapping, "App role mapping created successfully")
}

// @Router /api/app-role-mappings/{id} [get]
func (s *Server) getAppRoleMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	mapping, err := s.appRoles.Get(c.Request.Context(), authCtx.TenantID, id)
	if err != nil {
		s.respondServiceError(c, err, "Failed to get app role mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "App role mapping fetched successfully")
}

// @Router /api/app-role-mappings/{id} [put]
func (s *Server) updateAppRoleMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req AppRoleMappingPatch
	if !s.bindJSON(c, &req) {
		return
	}

	mapping, err := s.appRoles.Update(c.Request.Context(), authCtx.TenantID, id, tenancy.AppRolePatch{
		ProductID: req.ProductID,
		RoleID:    req.RoleID,
		TenantID:  req.TenantID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to update app role mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "App role mapping updated successfully")
}

// @Router /api/app-role-mappings/{id} [delete]
func (s *Server) deleteAppRoleMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	mapping, err := s.appRoles.Delete(c.Request.Context(), authCtx.TenantID, id)
	if err != nil {
		s.respondServiceError(c, err, "Failed to delete app role mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "App role mapping deleted successfully")
}
