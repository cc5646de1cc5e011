package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradedist/backend/internal/interfaces/http/dto"
)

// Context keys for the identity extracted from request headers. Tenant and
// user master data live in an upstream identity layer; this service trusts
// the gateway-injected headers.
const (
	TenantIDKey     = "tenant_id"
	UserIDKey       = "user_id"
	TenantHeaderKey = "X-Tenant-ID"
	UserHeaderKey   = "X-User-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/health", "/api/v1/system/ping", "/api/v1/system/info"},
	}
}

// TenantContext extracts the tenant from the X-Tenant-ID header and rejects
// requests without a valid one. The acting user from X-User-ID is optional.
func TenantContext() gin.HandlerFunc {
	return TenantContextWithConfig(DefaultTenantConfig())
}

// TenantContextWithConfig returns tenant middleware with custom configuration
func TenantContextWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "X-Tenant-ID header is required"))
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rejected request with invalid tenant header",
					zap.String("tenant_header", raw),
					zap.String("path", c.Request.URL.Path))
			}
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "X-Tenant-ID header must be a valid UUID"))
			return
		}
		c.Set(TenantIDKey, tenantID)

		if rawUser := c.GetHeader(UserHeaderKey); rawUser != "" {
			if userID, err := uuid.Parse(rawUser); err == nil {
				c.Set(UserIDKey, userID)
			}
		}

		c.Next()
	}
}

// GetTenantID returns the tenant extracted by TenantContext
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserID returns the acting user, or uuid.Nil when the header was absent
func GetUserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}
