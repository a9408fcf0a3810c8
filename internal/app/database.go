package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adanyl0v/go-task-manager/internal/config"
	"github.com/adanyl0v/go-task-manager/internal/database"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

var (
	globalDB           *gorm.DB
	globalPostgresPool *pgxpool.Pool
)

func MustConnectDatabase() {
	cfg := config.Global()
	logger := database.NewLogger(globalLogger, gormLogLevel(cfg.Env), cfg.Database.SlowThreshold)

	var err error
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		globalDB, err = database.OpenSQLite(database.SQLiteDSN(cfg.SQLite.Path), logger)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("path", cfg.SQLite.Path).
				Msg("failed to open sqlite")
			panic(err)
		}
		globalLogger.Info().
			Str("path", cfg.SQLite.Path).
			Msg("opened sqlite")
	case config.DriverPostgres:
		pgCfg := cfg.Postgres
		globalPostgresPool, err = connectPostgres(pgCfg)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("host", pgCfg.Host).
				Int("port", pgCfg.Port).
				Msg("failed to connect to postgres")
			panic(err)
		}
		globalLogger.Info().
			Str("host", pgCfg.Host).
			Int("port", pgCfg.Port).
			Msg("connected to postgres")

		globalDB, err = database.OpenPostgres(globalPostgresPool, logger)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to open gorm over postgres")
			panic(err)
		}
	default:
		panic(fmt.Errorf("unknown database driver: %s", cfg.Database.Driver))
	}
}

// connectPostgres opens a pool and pings it, closing the pool if the
// ping fails.
func connectPostgres(cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// MustPrepareDatabase creates the schema and seeds the store
// once, when no users exist yet.
func MustPrepareDatabase() {
	err := services.Migrate(globalDB)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to migrate database")
		panic(err)
	}
	globalLogger.Info().Msg("migrated database")

	_, err = services.SeedDefaults(context.Background(), globalLogger, globalDB)
	if err != nil {
		panic(err)
	}
}

func DisconnectDatabase() {
	sqlDB, err := globalDB.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close database")
	}

	if globalPostgresPool != nil {
		globalPostgresPool.Close()
		globalLogger.Info().Msg("disconnected from postgres")
	}
	globalLogger.Info().Msg("closed database")
}

func gormLogLevel(env string) gormlogger.LogLevel {
	if env == config.EnvLocal {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
