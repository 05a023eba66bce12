package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/tenantgate/tenantgate/internal/auth"
)

const (
	authContextKey  = "auth_context"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

var ErrNoAuthContext = errors.New("auth context not found on request")

func setAuthContext(c *gin.Context, authCtx *auth.Context) {
	c.Set(authContextKey, authCtx)
}

// GetAuthContext returns the identity resolved by AuthMiddleware
func GetAuthContext(c *gin.Context) (*auth.Context, bool) {
	value, exists := c.Get(authContextKey)
	if !exists {
		return nil, false
	}

	authCtx, ok := value.(*auth.Context)
	return authCtx, ok
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// AuthMiddleware resolves the bearer session once per request.
// Auth failures are 401 with the failure's message; store outages are 500.
func AuthMiddleware(resolver *auth.Resolver, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx, err := resolver.ContextFromHeader(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if authErr, ok := auth.AsError(err); ok {
				respondWithError(c, log, http.StatusUnauthorized, err, authErr.Message)
				return
			}
			log.Error().Err(err).Msg("Failed to resolve session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		setAuthContext(c, authCtx)
		c.Next()
	}
}

// RequestIDMiddleware tags each request with a ULID, keeping a caller-supplied id
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
