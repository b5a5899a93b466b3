// Package daemon assembles the role hierarchy service from its configuration.
package daemon

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db"
	rolestore "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/controller/role"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/rolequery"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/navigation"
)

// ErrConfigNil is returned when no configuration is given.
var ErrConfigNil = errors.New("config is nil")

// Backend is the migrated database with the services built on it.
type Backend struct {
	DB     *gorm.DB
	Engine *hierarchy.Engine
	Query  *rolequery.Service
}

// Open connects to the configured database, migrates the schema and builds the services.
// Default roles are seeded when configured and no role exists yet.
func Open(cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(gdb); err != nil {
		return nil, err
	}

	store := rolestore.New(gdb, rolestore.WithLockTimeout(cfg.DB.LockTimeout))
	engine := hierarchy.New(store)

	b := &Backend{
		DB:     gdb,
		Engine: engine,
		Query:  rolequery.New(gdb, engine, rolequery.WithCaseInsensitive(cfg.Roles.CaseInsensitiveSearch)),
	}

	if cfg.Roles.SeedDefaults {
		if err = seed(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Close releases the database connections.
func (b *Backend) Close() error {
	sqlDB, err := b.DB.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}

	return sqlDB.Close()
}

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	backend    *Backend
	webService *web.Service
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	backend, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(cfg, handler.Deps{
		Engine:     backend.Engine,
		Query:      backend.Query,
		Navigation: navigation.NewRegistry(),
	})
	if err != nil {
		_ = backend.Close()

		return nil, err
	}

	return &Daemon{cfg: cfg, backend: backend, webService: webService}, nil
}

// Start serves http on the configured port until a shutdown signal arrives.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("engine", d.cfg.DB.GormEngine).Msg("starting web service")

	if err := d.webService.Start(addr); err != nil {
		_ = d.backend.Close()

		return err
	}

	return d.backend.Close()
}
