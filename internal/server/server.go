// Package server
//
// @title Tenantgate API
// @version 1.0
// @description Tenant-scoped users, roles and product access
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/config"
	"github.com/tenantgate/tenantgate/internal/sessions"
	"github.com/tenantgate/tenantgate/internal/tasks"
	"github.com/tenantgate/tenantgate/internal/tenancy"
)

// Deps are the external resources the server is built on.
// Tasks may be nil, in which case deleted users' sessions are left to the sweep.
type Deps struct {
	DB       *gorm.DB
	Store    sessions.Store
	Verifier auth.TokenVerifier
	Tasks    tasks.Enqueuer
}

// Server represents the HTTP server
type Server struct {
	router         *gin.Engine
	db             *gorm.DB
	config         *config.Config
	logger         zerolog.Logger
	validator      *validator.Validate
	store          sessions.Store
	tasks          tasks.Enqueuer
	resolver       *auth.Resolver
	users          *tenancy.UserService
	roleUsers      *tenancy.RoleUserService
	appRoles       *tenancy.AppRoleService
	tenantProducts *tenancy.TenantProductService
	version        string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, deps Deps, version string) *Server {
	// Initialize validator
	validate := validator.New()
	registerValidators(validate)

	server := &Server{
		db:             deps.DB,
		config:         cfg,
		logger:         zlog,
		validator:      validate,
		store:          deps.Store,
		tasks:          deps.Tasks,
		resolver:       auth.NewResolver(deps.Store, deps.Verifier, zlog),
		users:          tenancy.NewUserService(deps.DB, zlog),
		roleUsers:      tenancy.NewRoleUserService(deps.DB, zlog),
		appRoles:       tenancy.NewAppRoleService(deps.DB, zlog),
		tenantProducts: tenancy.NewTenantProductService(deps.DB, zlog),
		version:        version,
	}

	// Setup router
	server.setupRouter()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(RequestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware; cors.New panics on an empty origin list
	if len(s.config.HTTP.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.HTTP.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Every API route resolves the bearer session first
	api := s.router.Group("/api")
	api.Use(AuthMiddleware(s.resolver, s.logger))
	{
		api.GET("/auth/context", s.getAuthContext)

		// Caller-centric routes
		api.GET("/user-products", s.getUserProducts)
		api.GET("/get-user", s.getUser)
		api.PUT("/update-user", s.updateUser)

		users := api.Group("/users")
		{
			users.GET("", s.listUsers)
			users.POST("", s.createUser)
			users.GET("/:id", s.getUser)
			users.PUT("/:id", s.updateUser)
			users.DELETE("/:id", s.deleteUser)
		}

		roleUsers := api.Group("/role-user-mappings")
		{
			roleUsers.GET("", s.listRoleUserMappings)
			roleUsers.POST("", s.createRoleUserMapping)
			roleUsers.GET("/:id", s.getRoleUserMapping)
			roleUsers.PUT("/:id", s.updateRoleUserMapping)
			roleUsers.DELETE("/:id", s.deleteRoleUserMapping)
		}

		appRoles := api.Group("/app-role-mappings")
		{
			appRoles.GET("", s.listAppRoleMappings)
			appRoles.POST("", s.createAppRoleMapping)
			appRoles.GET("/:id", s.getAppRoleMapping)
			appRoles.PUT("/:id", s.updateAppRoleMapping)
			appRoles.DELETE("/:id", s.deleteAppRoleMapping)
		}

		tenantProducts := api.Group("/tenant-product-mappings")
		{
			tenantProducts.GET("", s.listTenantProductMappings)
			tenantProducts.POST("", s.createTenantProductMapping)
			tenantProducts.GET("/:id", s.getTenantProductMapping)
			tenantProducts.DELETE("/:id", s.deleteTenantProductMapping)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "sessions": "ok"}
	status := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Session store ping failed")
			checks["sessions"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	state := "online"
	if status != http.StatusOK {
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC(),
		"service":   "tenantgate-api",
		"version":   s.version,
	})
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	port := ":" + s.config.HTTP.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		return err
	case <-sigChan:
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
