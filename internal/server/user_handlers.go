package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/tenantgate/tenantgate/internal/tasks"
	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// CreateUserRequest represents a request to create a tenant user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required" validate:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required" validate:"min=8,max=72"`
}

// UpdateUserRequest is a partial update; omitted fields are unchanged
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active"`
}

// userIDFrom reads the target user from /users/:id or ?user_id=
func userIDFrom(c *gin.Context) (int64, bool) {
	if raw := c.Param("id"); raw != "" {
		return parseID(c, "user_id", raw)
	}
	raw, present := c.GetQuery("user_id")
	if !present {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return 0, false
	}
	return parseID(c, "user_id", raw)
}

// @Router /api/users [get]
// @Param name query string false "Username substring"
// @Param email query string false "Email substring"
func (s *Server) listUsers(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}

	users, err := s.users.List(c.Request.Context(), authCtx.TenantID, tenancy.UserFilter{
		Name:  c.Query("name"),
		Email: c.Query("email"),
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to list users")
		return
	}

	respondData(c, http.StatusOK, users, "Users fetched successfully")
}

// @Router /api/users [post]
// @Param body body CreateUserRequest true "User"
func (s *Server) createUser(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !s.bindJSON(c, &req) {
		return
	}

	user, err := s.users.Create(c.Request.Context(), authCtx.TenantID, tenancy.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to create user")
		return
	}

	respondData(c, http.StatusCreated, user, "User created successfully")
}

// @Router /api/users/{id} [get]
// @Router /api/get-user [get]
func (s *Server) getUser(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	user, err := s.users.Get(c.Request.Context(), authCtx.TenantID, userID)
	if err != nil {
		s.respondServiceError(c, err, "Failed to get user")
		return
	}

	respondData(c, http.StatusOK, user, "User details fetched successfully")
}

// @Router /api/users/{id} [put]
// @Router /api/update-user [put]
func (s *Server) updateUser(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !s.bindJSON(c, &req) {
		return
	}

	user, err := s.users.Update(c.Request.Context(), authCtx.TenantID, userID, tenancy.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		s.respondServiceError(c, err, "Failed to update user")
		return
	}

	respondData(c, http.StatusOK, user, "User updated successfully")
}

// @Router /api/users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	user, err := s.users.Delete(c.Request.Context(), authCtx.TenantID, userID)
	if err != nil {
		s.respondServiceError(c, err, "Failed to delete user")
		return
	}

	s.enqueueSessionPurge(authCtx.TenantID, user.UserID)
	respondData(c, http.StatusOK, user, "User deleted successfully")
}

// enqueueSessionPurge schedules removal of a deleted user's sessions.
// The user is already gone, so a failure here is only logged.
func (s *Server) enqueueSessionPurge(tenantID, userID int64) {
	if s.tasks == nil {
		return
	}

	task, err := tasks.NewPurgeUserSessionsTask(tenantID, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to create session purge task")
		return
	}
	if _, err := s.tasks.Enqueue(task, asynq.MaxRetry(5), asynq.Timeout(5*time.Minute)); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to enqueue session purge")
	}
}

// @Router /api/user-products [get]
func (s *Server) getUserProducts(c *gin.Context) {
	authCtx, userID, ok := s.requireUserID(c)
	if !ok {
		return
	}

	products, err := s.users.Products(c.Request.Context(), authCtx.TenantID, userID)
	if err != nil {
		s.respondServiceError(c, err, "Failed to load user products")
		return
	}

	respondData(c, http.StatusOK, products, "User products fetched successfully")
}
