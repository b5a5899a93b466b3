package config

import "time"

// Supported values of DB.GormEngine.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string // appended to the DSN, e.g. parseTime=true for mysql or sslmode=disable for postgres
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // sqlite database file, ":memory:" for a throw away database
	GormEngine string // mysql, postgres or sqlite

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// LockTimeout bounds the wait for row locks inside hierarchy transactions (postgres only).
	LockTimeout time.Duration
	// LogQueries logs every statement at debug level.
	LogQueries bool
}
