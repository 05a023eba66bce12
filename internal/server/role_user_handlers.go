package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// RoleUserMappingRequest grants a role to a user. tenant_id is accepted and ignored.
type RoleUserMappingRequest struct {
	RoleID   int64  `json:"role_id" binding:"required,gt=0"`
	UserID   int64  `json:"user_id" binding:"required,gt=0"`
	TenantID *int64 `json:"tenant_id"`
}

// RoleUserMappingPatch is a partial update
type RoleUserMappingPatch struct {
	RoleID   *int64 `json:"role_id" binding:"omitempty,gt=0"`
	UserID   *int64 `json:"user_id" binding:"omitempty,gt=0"`
	TenantID *int64 `json:"tenant_id"`
}

// @Router /api/role-user-mappings [get]
// @Param user_id query int false "Filter by user"
// @Param role_id query int false "Filter by role"
func (s *Server) listRoleUserMappings(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	userID, ok := optionalID(c, "user_id")
	if !ok {
		return
	}
	roleID, ok := optionalID(c, "role_id")
	if !ok {
		return
	}

	mappings, err := s.roleUsers.List(c.Request.Context(), authCtx.TenantID, tenancy.RoleUserFilter{
		UserID: userID,
		RoleID: roleID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to list role user mappings")
		return
	}

	respondData(c, http.StatusOK, mappings, "Role user mappings fetched successfully")
}

// @Router /api/role-user-mappings [post]
func (s *Server) createRoleUserMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}

	var req RoleUserMappingRequest
	if !s.bindJSON(c, &req) {
		return
	}

	mapping, err := s.roleUsers.Create(c.Request.Context(), authCtx.TenantID, tenancy.RoleUserInput{
		RoleID:   req.RoleID,
		UserID:   req.UserID,
		TenantID: req.TenantID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to create role user mapping")
		return
	}

	respondData(c, http.StatusCreated, mapping, "Role user mapping created successfully")
}

// @Router /api/role-user-mappings/{id} [get]
func (s *Server) getRoleUserMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	mapping, err := s.roleUsers.Get(c.Request.Context(), authCtx.TenantID, id)
	if err != nil {
		s.respondServiceError(c, err, "Failed to get role user mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "Role user mapping fetched successfully")
}

// @Router /api/role-user-mappings/{id} [put]
func (s *Server) updateRoleUserMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	var req RoleUserMappingPatch
	if !s.bindJSON(c, &req) {
		return
	}

	mapping, err := s.roleUsers.Update(c.Request.Context(), authCtx.TenantID, id, tenancy.RoleUserPatch{
		RoleID:   req.RoleID,
		UserID:   req.UserID,
		TenantID: req.TenantID,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to update role user mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "Role user mapping updated successfully")
}

// @Router /api/role-user-mappings/{id} [delete]
func (s *Server) deleteRoleUserMapping(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", c.Param("id"))
	if !ok {
		return
	}

	mapping, err := s.roleUsers.Delete(c.Request.Context(), authCtx.TenantID, id)
	if err != nil {
		s.respondServiceError(c, err, "Failed to delete role user mapping")
		return
	}

	respondData(c, http.StatusOK, mapping, "Role user mapping deleted successfully")
}
