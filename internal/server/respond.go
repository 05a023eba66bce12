package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// Envelope wraps every successful response
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func respondData(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Data: data, Message: message})
}

// respondServiceError maps tenancy errors onto HTTP statuses
func (s *Server) respondServiceError(c *gin.Context, err error, action string) {
	message, _ := tenancy.Message(err)

	switch {
	case errors.Is(err, tenancy.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message})
	case errors.Is(err, tenancy.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
	default:
		s.logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg(action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// mustAuthContext fetches the resolved identity or writes a 500
func (s *Server) mustAuthContext(c *gin.Context) (*auth.Context, bool) {
	authCtx, ok := GetAuthContext(c)
	if !ok {
		s.logger.Error().Err(ErrNoAuthContext).Msg("Auth context not found in request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return authCtx, true
}

// requireUserID fetches the caller's user id; tenant principals are rejected
func (s *Server) requireUserID(c *gin.Context) (*auth.Context, int64, bool) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return nil, 0, false
	}
	if authCtx.UserID == nil {
		respondWithError(c, s.logger, http.StatusUnauthorized, auth.ErrUserIDNotFound, auth.ErrUserIDNotFound.Message)
		return nil, 0, false
	}
	return authCtx, *authCtx.UserID, true
}

func (s *Server) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn().Err(err).Msg("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return false
	}
	return true
}

// parseID reads a positive integer from a path parameter or query value
func parseID(c *gin.Context, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// optionalID reads an optional integer query filter
func optionalID(c *gin.Context, name string) (*int64, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	id, ok := parseID(c, name, raw)
	if !ok {
		return nil, false
	}
	return &id, true
}
