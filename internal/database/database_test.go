package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aalbahar80/rems-ai-sub000/internal/config"
	"github.com/aalbahar80/rems-ai-sub000/internal/database"
	"github.com/aalbahar80/rems-ai-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := database.BuildDSN(config.DatabaseConfig{
		Host: "db", Port: 5433, User: "rems", Password: "pw", DBName: "orders", SSLMode: "require",
	})
	assert.Equal(t, "host=db port=5433 user=rems password=pw dbname=orders sslmode=require", dsn)
}

func TestDialector_UnsupportedDriver(t *testing.T) {
	_, err := database.Dialector(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "rems.db")}

	db, err := database.ConnectWithRetry(cfg, 2, 10*time.Millisecond)
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Migrate(db))
	// 迁移可重复执行
	require.NoError(t, database.Migrate(db))

	for _, table := range []interface{}{
		&model.MaintenanceOrderModel{},
		&model.VendorModel{},
		&model.StateHistoryModel{},
		&model.AuditLogModel{},
		&model.EventModel{},
	} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex("maintenance_orders", "idx_orders_firm_status"))
	assert.True(t, database.CheckHealth(db))
}

func TestCheckHealth_Nil(t *testing.T) {
	assert.False(t, database.CheckHealth(nil))
}
