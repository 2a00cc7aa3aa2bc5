package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  = zap.NewNop()
	once sync.Once
)

type ContextKey string

const (
	// RequestIDKey is the typed context key for the request id
	RequestIDKey ContextKey = "request_id"
	// ginRequestIDKey is the plain string key gin handlers store the id under
	ginRequestIDKey = "request_id"
)

// Init builds the process logger once. "development" gives a colored console
// encoder, everything else JSON.
func Init(env string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		built, err := config.Build(zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
		log = built
	})
}

// SetLogger replaces the process logger (used for testing)
func SetLogger(l *zap.Logger) {
	log = l
}

// GetLogger returns the underlying zap logger
func GetLogger() *zap.Logger {
	return log
}

// Sync flushes buffered entries
func Sync() {
	_ = log.Sync()
}

// ContextWithRequestID stores a request id for later log enrichment
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id carried by ctx, if any
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	if id, ok := ctx.Value(ginRequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithContext adds request scoped fields to the logger
func WithContext(ctx context.Context) *zap.Logger {
	if id := RequestID(ctx); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}

// Info logs a message at InfoLevel
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// RequestEntry is one access log line
type RequestEntry struct {
	Method   string
	Route    string
	Status   int
	Latency  time.Duration
	ClientIP string
	UserID   string
	Err      string
}

// LogRequest writes an access log line. Server errors are logged at warn
// level so they surface without a separate handler log.
func LogRequest(ctx context.Context, e RequestEntry) {
	fields := []zap.Field{
		zap.String("method", e.Method),
		zap.String("route", e.Route),
		zap.Int("status", e.Status),
		zap.Duration("latency", e.Latency),
		zap.String("client_ip", e.ClientIP),
	}
	if e.UserID != "" {
		fields = append(fields, zap.String("user_id", e.UserID))
	}
	if e.Err != "" {
		fields = append(fields, zap.String("error", e.Err))
	}

	if e.Status >= 500 {
		WithContext(ctx).Warn("http request", fields...)
		return
	}
	WithContext(ctx).Info("http request", fields...)
}
