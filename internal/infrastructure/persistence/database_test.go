package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazchem/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:        config.DriverSQLite,
		DBName:        filepath.Join(t.TempDir(), "hazchem.db"),
		SlowThreshold: time.Second,
	}

	db, err := NewDatabase(cfg, zap.NewNop(), "silent")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.AutoMigrate())
	for _, table := range []string{"chemicals", "inventories", "persons", "register_records", "storage_records", "outbound_records", "usage_records"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
	assert.True(t, db.DB.Migrator().HasIndex("inventories", "idx_inventories_chemical"))

	assert.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_Unreachable(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Host:     "127.0.0.1",
		Port:     1,
		User:     "hazchem",
		DBName:   "hazchem",
		SSLMode:  "disable",
		Password: "x",
	}
	_, err := NewDatabase(cfg, zap.NewNop(), "silent")
	assert.Error(t, err)
}
