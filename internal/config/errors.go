package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine names no supported database.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrEmptyDBHost error if a network database has no host.
	ErrEmptyDBHost = errors.New("toml config db.host can not be empty")

	// ErrEmptyDBPath error if sqlite has no database file.
	ErrEmptyDBPath = errors.New("toml config db.path can not be empty for sqlite")
)
