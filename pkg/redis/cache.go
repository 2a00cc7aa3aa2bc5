package redis

import (
	"context"
	"encoding/json"
	"time"
)

var (
	cacheGet = Get
	cacheSet = Set
	cacheDel = Del
)

// Enabled reports whether a client has been configured.
// The JSON cache helpers are no-ops without one.
func Enabled() bool {
	return client != nil
}

// GetJSON loads a cached JSON value into dest.
// It returns false on a miss; decode and transport errors are returned as-is.
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := cacheGet(ctx, key)
	if err != nil {
		if IsNil(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value as JSON under key
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cacheSet(ctx, key, raw, ttl)
}

// Invalidate drops a cached key
func Invalidate(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return cacheDel(ctx, key)
}
