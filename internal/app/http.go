package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-manager/internal/config"
	v1 "github.com/adanyl0v/go-task-manager/internal/delivery/http/v1"
	"github.com/adanyl0v/go-task-manager/internal/services"
)

// MustListenAndServeHTTP serves the task API until SIGINT or SIGTERM
// arrives, then drains in-flight requests.
func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	server := newHTTPServer(cfg.HTTP, newRouter())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		globalLogger.Info().
			Str("addr", server.Addr).
			Msg("setting up http server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
		return
	case <-ctx.Done():
	}

	globalLogger.Info().
		Dur("timeout", cfg.HTTP.ShutdownTimeout).
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func newHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func newRouter() *gin.Engine {
	sqlDB, err := globalDB.DB()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to get database handle")
		panic(err)
	}

	handler := v1.New(
		globalLogger,
		services.NewTaskService(globalLogger, globalDB),
		services.NewUserService(globalLogger, globalDB),
		sqlDB,
	)

	router := gin.New()
	router.Use(handler.HandleRequestID, handler.HandleAccessLog, gin.Recovery())
	v1.Register(router, handler)
	return router
}
