package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Resolved auth context
// @Description Returns the tenant and user the bearer session resolves to
// @Tags auth
// @Produce json
// @Router /api/auth/context [get]
func (s *Server) getAuthContext(c *gin.Context) {
	authCtx, ok := s.mustAuthContext(c)
	if !ok {
		return
	}

	respondData(c, http.StatusOK, authCtx, "Auth context resolved successfully")
}
