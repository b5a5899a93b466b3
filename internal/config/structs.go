package config

import (
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Roles     Roles
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown in seconds
	URL            string // base url for the webserver
	ActorHeader    string // request header carrying the acting role id, default X-Actor-Role-Id
}

// Roles configures role management and the role search.
type Roles struct {
	// CaseInsensitiveSearch compares substring filters on lower cased values.
	CaseInsensitiveSearch bool
	// SeedDefaults creates Administrator, Editor and Viewer on an empty database.
	SeedDefaults bool
	// DefaultPageSize is used when a listing passes "none" as limit.
	DefaultPageSize int
	// MaxPageSize caps the limit of a listing.
	MaxPageSize int
	// ManagerRole names the role an actor must be or inherit to change roles.
	// Empty allows every request.
	ManagerRole string
}
