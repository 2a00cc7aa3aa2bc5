package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/middleware"
)

func newTestRouter(p *entities.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if p != nil {
		principal := *p
		r.Use(func(c *gin.Context) {
			c.Set(middleware.PrincipalKey, principal)
			c.Next()
		})
	}
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
