package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/config"
)

const serviceName = "task-manager"

var globalLogger zerolog.Logger

// envLogLevels maps each known environment to its minimum log level.
var envLogLevels = map[string]zerolog.Level{
	config.EnvLocal: zerolog.TraceLevel,
	config.EnvDev:   zerolog.DebugLevel,
	config.EnvProd:  zerolog.InfoLevel,
}

// InitDefaultLogger sets up a JSON logger usable before the config is read.
func InitDefaultLogger() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	env := config.Global().Env

	level, ok := envLogLevels[env]
	if !ok {
		globalLogger.Error().
			Str("env", env).
			Msg("unknown env")
		panic(fmt.Errorf("unknown env: %s", env))
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(logWriter(env))
	globalLogger.Info().
		Str("env", env).
		Str("level", level.String()).
		Msg("initialized application logger")
}

// logWriter renders human readable lines for local runs and JSON elsewhere.
func logWriter(env string) io.Writer {
	if env != config.EnvLocal {
		return os.Stdout
	}
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.DateTime,
	}
}
