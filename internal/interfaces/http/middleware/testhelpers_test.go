package middleware

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/pkg/redis"
)

func withMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(client)
	t.Cleanup(func() {
		_ = client.Close()
		redis.SetClient(nil)
	})
	return srv
}

func asPrincipal(p entities.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(PrincipalKey, p)
		c.Next()
	}
}
