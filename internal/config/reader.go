package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	err = validate(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.SQLite.Path == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		pg := cfg.Postgres
		if pg.Username == "" || pg.Password == "" || pg.Database == "" {
			return errors.New("POSTGRES_USERNAME, POSTGRES_PASSWORD and POSTGRES_DATABASE are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
	return nil
}
