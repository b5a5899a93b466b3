package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
)

func TestOpenAndMigrate(t *testing.T) {
	cfg := &config.Config{DB: config.DB{GormEngine: config.EngineSQLite, Path: ":memory:"}}

	gdb, err := db.Open(cfg)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(gdb))
	// migrating twice is harmless
	require.NoError(t, db.Migrate(gdb))

	for _, table := range []any{&models.Role{}, &models.Meta{}, &models.RoleHierarchy{}} {
		assert.True(t, gdb.Migrator().HasTable(table))
	}

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenErrors(t *testing.T) {
	_, err := db.Open(nil)
	require.ErrorIs(t, err, db.ErrConfigNil)

	_, err = db.Open(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestDialector(t *testing.T) {
	for engine, name := range map[string]string{
		config.EngineMySQL:    "mysql",
		config.EnginePostgres: "postgres",
		config.EngineSQLite:   "sqlite",
	} {
		d, err := db.Dialector(&config.Config{DB: config.DB{GormEngine: engine, Path: ":memory:"}})
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}
}
