package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"couponmap.backend/internal/interfaces/http/response"
	"couponmap.backend/pkg/logger"
	"couponmap.backend/pkg/redis"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"

	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// anonymousScope keys unauthenticated requests by their body so a stored
// response is only replayed to a caller that sent the identical request.
func anonymousScope(body []byte) string {
	sum := sha256.Sum256(body)
	return "anon-" + hex.EncodeToString(sum[:8])
}

// IdempotencyMiddleware replays the stored response of a request that was
// already processed under the same Idempotency-Key. Keys are scoped per user,
// or per request body when unauthenticated. Requests without the header pass
// through; a redis outage fails open.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || redis.GetClient() == nil {
			c.Next()
			return
		}

		var scope string
		if principal, ok := GetPrincipal(c); ok {
			scope = principal.UserID.String()
		} else {
			var body []byte
			if c.Request.Body != nil {
				raw, err := io.ReadAll(c.Request.Body)
				if err != nil {
					response.ErrorWithStatus(c, http.StatusBadRequest, "Unreadable request body")
					return
				}
				body = raw
				c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			}
			scope = anonymousScope(body)
		}
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", scope, c.FullPath(), key)
		ctx := c.Request.Context()

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil {
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			replay(c, storageKey)
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			// let the client retry
			_ = redisDel(ctx, storageKey)
			return
		}
		raw, err := json.Marshal(storedResponse{Status: status, Body: w.body.Bytes()})
		if err == nil {
			err = redisSet(ctx, storageKey, raw, RetentionDuration)
		}
		if err != nil {
			logger.Warn(ctx, "Idempotent response not stored", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, storageKey string) {
	val, err := redisGet(c.Request.Context(), storageKey)
	if err != nil || val == processingMarker {
		response.ErrorWithStatus(c, http.StatusConflict, "Request already in progress")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		response.ErrorWithStatus(c, http.StatusConflict, "Request already in progress")
		return
	}
	c.Header(IdempotencyHitHeader, "true")
	c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
	c.Abort()
}
