// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the toml configuration.
	EnvConfigJSON = "GO_ROLES_ADMIN_CONFIG_JSON"

	// envPrefix scopes single value overrides, e.g. GO_ROLES_ADMIN_WEBSERVER_PORT.
	envPrefix = "GO_ROLES_ADMIN"

	defaultShutDownTime = 5
	defaultPageSize     = 25
	maxPageSize         = 500
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c   Config
		err error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(path + "main.toml")
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	if JSONConfigEnv := os.Getenv(EnvConfigJSON); JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfigJSON config as JSON String. The database password is masked.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	masked := *c
	if masked.DB.Password != "" {
		masked.DB.Password = "********"
	}

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(masked); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the settings needed to start and fill in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres:
		if c.DB.Host == "" {
			return errors.Wrap(ErrEmptyDBHost, invalidErrMessage)
		}
	case EngineSQLite:
		if c.DB.Path == "" {
			return errors.Wrap(ErrEmptyDBPath, invalidErrMessage)
		}
	default:
		return errors.Wrapf(ErrUnknownGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Roles.MaxPageSize <= 0 {
		c.Roles.MaxPageSize = maxPageSize
	}

	if c.Roles.DefaultPageSize <= 0 || c.Roles.DefaultPageSize > c.Roles.MaxPageSize {
		c.Roles.DefaultPageSize = min(defaultPageSize, c.Roles.MaxPageSize)
	}

	return nil
}
