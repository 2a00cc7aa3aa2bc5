package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
	"couponmap.backend/pkg/jwt"
	"couponmap.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// PrincipalKey is the gin context key of the authenticated caller
	PrincipalKey = "principal"
)

// AuthMiddleware rejects requests without a valid access token and stores
// the caller as an entities.Principal
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Debug(c.Request.Context(), "Token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.ErrorWithStatus(c, http.StatusUnauthorized, "Token has expired")
				return
			}
			response.ErrorWithStatus(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(PrincipalKey, entities.Principal{
			UserID:     claims.UserID,
			Role:       entities.UserRole(claims.Role),
			MerchantID: claims.MerchantID,
		})
		c.Next()
	}
}

// GetPrincipal returns the caller stored by AuthMiddleware
func GetPrincipal(c *gin.Context) (entities.Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return entities.Principal{}, false
	}
	p, ok := v.(entities.Principal)
	return p, ok
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, exists := GetPrincipal(c)
		if !exists {
			response.ErrorWithStatus(c, http.StatusUnauthorized, "User not authenticated")
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		response.ErrorWithStatus(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleAdmin)
}

// RequireMerchant admits merchants and admins
func RequireMerchant() gin.HandlerFunc {
	return RequireRole(entities.UserRoleMerchant, entities.UserRoleAdmin)
}
