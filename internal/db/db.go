// Package db opens the configured gorm database and migrates the role schema.
package db

import (
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/dsn"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	gormlog "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/logger/adapter/gorm"
)

// ErrConfigNil is returned when Open is called without configuration.
var ErrConfigNil = errors.New("config is nil")

// Dialector returns the gorm dialector for cfg.DB.GormEngine.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return gormmysql.Open(dsn.Create(cfg)), nil
	case config.EnginePostgres:
		return postgres.Open(dsn.Create(cfg)), nil
	case config.EngineSQLite:
		return sqlite.Open(dsn.Create(cfg)), nil
	default:
		return nil, errors.Wrapf(config.ErrUnknownGormEngine, "%q", cfg.DB.GormEngine)
	}
}

// Open connects to the configured database and applies the pool settings.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlog.New(log.Logger, cfg.DB.LogQueries),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access connection pool")
	}

	// a single connection keeps sqlite writers from tripping over each other
	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}

	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	log.Info().Str("engine", cfg.DB.GormEngine).Msg("database connected")

	return gdb, nil
}

// Migrate creates or updates the role tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Role{},
		&models.Meta{},
		&models.RoleHierarchy{},
	); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}
