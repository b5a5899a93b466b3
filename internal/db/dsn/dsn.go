// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
)

// MySQL builds a go-sql-driver/mysql DSN. parseTime is enforced because the audit
// columns are scanned into time.Time.
func MySQL(db config.DB) string {
	extras := db.Extras
	if !strings.Contains(extras, "parseTime=") {
		extras = strings.TrimPrefix(extras+"&parseTime=true", "&")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		extras,
	)
}

// Postgres builds a pgx URL DSN.
func Postgres(db config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}

// SQLite builds the glebarez/sqlite DSN. Foreign keys are switched on and writers wait
// for the lock instead of failing at once.
func SQLite(db config.DB) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	sep := "?"
	if strings.Contains(db.Path, "?") {
		sep = "&"
	}

	out := db.Path + sep + pragmas
	if db.Extras != "" {
		out += "&" + db.Extras
	}

	return out
}

// Create builds the DSN matching db.GormEngine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(cfg.DB)
	case config.EngineSQLite:
		return SQLite(cfg.DB)
	default:
		return MySQL(cfg.DB)
	}
}
