package postgres

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponmap.backend/internal/config"
)

func stubConnection(t *testing.T) (opened *string, pinged *bool) {
	t.Helper()
	origOpen, origPing := sqlOpen, dbPing
	t.Cleanup(func() {
		sqlOpen = origOpen
		dbPing = origPing
	})

	var dsn string
	var ping bool
	sqlOpen = func(driver, source string) (*sql.DB, error) {
		dsn = source
		// lib/pq opens lazily, so this never dials
		return origOpen(driver, source)
	}
	dbPing = func(*sql.DB) error {
		ping = true
		return nil
	}
	return &dsn, &ping
}

func TestNewConnection_AppliesPoolSettings(t *testing.T) {
	dsn, pinged := stubConnection(t)
	cfg := config.DatabaseConfig{
		Host: "db.internal", Port: 6543, User: "couponmap", Password: "secret", DBName: "coupons", SSLMode: "require",
		MaxOpenConns: 7, MaxIdleConns: 2, ConnMaxLifetime: time.Minute,
	}

	db, err := NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.True(t, *pinged)
	assert.Equal(t, "host=db.internal port=6543 user=couponmap password=secret dbname=coupons sslmode=require", *dsn)
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestNewConnection_ZeroPoolSettingsKeepDefaults(t *testing.T) {
	stubConnection(t)

	db, err := NewConnection(config.DatabaseConfig{Host: "localhost", Port: 5432, SSLMode: "disable"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, 0, db.Stats().MaxOpenConnections)
}

func TestNewConnection_OpenFailure(t *testing.T) {
	stubConnection(t)
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("driver missing") }

	db, err := NewConnection(config.DatabaseConfig{})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to open database")
}

func TestNewConnection_PingFailureNamesTarget(t *testing.T) {
	stubConnection(t)
	dbPing = func(*sql.DB) error { return errors.New("connection refused") }

	db, err := NewConnection(config.DatabaseConfig{Host: "db.internal", Port: 5432, User: "couponmap", DBName: "coupons"})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "couponmap@db.internal:5432/coupons")
	assert.Contains(t, err.Error(), "connection refused")
}
