package app

import (
	"net"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/config"
)

// MustReadEnv reads the configuration from the environment, after the
// autoload import has merged any .env file into it.
func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}

	event := globalLogger.Info().
		Str("env", cfg.Env).
		Str("http_addr", net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port))
	logStoreTarget(event, cfg).Msg("read env")

	config.SetGlobal(cfg)
}

// logStoreTarget describes where data will be stored without exposing
// credentials.
func logStoreTarget(event *zerolog.Event, cfg *config.Config) *zerolog.Event {
	event = event.Str("database_driver", cfg.Database.Driver)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return event.
			Str("postgres_host", cfg.Postgres.Host).
			Int("postgres_port", cfg.Postgres.Port).
			Str("postgres_database", cfg.Postgres.Database)
	default:
		return event.Str("sqlite_path", cfg.SQLite.Path)
	}
}
