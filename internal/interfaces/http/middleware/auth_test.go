package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/jwt"
)

func newAuthRouter(svc *jwt.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(svc), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role, "merchant_id": p.MerchantID})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Hour)
	userID := uuid.New()
	merchantID := uuid.New()
	pair, err := svc.GenerateTokenPair(jwt.Identity{UserID: userID, Role: "merchant", MerchantID: &merchantID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
	w := httptest.NewRecorder()
	newAuthRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), merchantID.String())
	assert.Contains(t, w.Body.String(), `"role":"merchant"`)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Hour)
	pair, err := svc.GenerateTokenPair(jwt.Identity{UserID: uuid.New(), Role: "consumer"})
	require.NoError(t, err)

	expiredSvc := jwt.NewJWTService("secret", -time.Minute, time.Hour)
	expired, err := expiredSvc.GenerateTokenPair(jwt.Identity{UserID: uuid.New(), Role: "consumer"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Authorization header is required"},
		{"not bearer", "Basic abc", "Invalid authorization format"},
		{"garbage token", BearerPrefix + "abc", "Invalid token"},
		{"refresh token", BearerPrefix + pair.RefreshToken, "Invalid token"},
		{"expired token", BearerPrefix + expired.AccessToken, "Token has expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			newAuthRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	merchantID := uuid.New()

	tests := []struct {
		name      string
		principal *entities.Principal
		guard     gin.HandlerFunc
		want      int
	}{
		{"no principal", nil, RequireAdmin(), http.StatusUnauthorized},
		{"consumer on admin route", &entities.Principal{UserID: uuid.New(), Role: entities.UserRoleConsumer}, RequireAdmin(), http.StatusForbidden},
		{"admin on admin route", &entities.Principal{UserID: uuid.New(), Role: entities.UserRoleAdmin}, RequireAdmin(), http.StatusOK},
		{"merchant on merchant route", &entities.Principal{UserID: uuid.New(), Role: entities.UserRoleMerchant, MerchantID: &merchantID}, RequireMerchant(), http.StatusOK},
		{"admin on merchant route", &entities.Principal{UserID: uuid.New(), Role: entities.UserRoleAdmin}, RequireMerchant(), http.StatusOK},
		{"consumer on merchant route", &entities.Principal{UserID: uuid.New(), Role: entities.UserRoleConsumer}, RequireMerchant(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			handlers := []gin.HandlerFunc{}
			if tt.principal != nil {
				handlers = append(handlers, asPrincipal(*tt.principal))
			}
			handlers = append(handlers, tt.guard, func(c *gin.Context) { c.Status(http.StatusOK) })
			r.GET("/x", handlers...)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
