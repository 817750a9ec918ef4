package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kedr891/metal-rates-service/config"
	"github.com/kedr891/metal-rates-service/pkg/logger"
	"github.com/kedr891/metal-rates-service/pkg/postgres"
)

const _shutdownTimeout = 10 * time.Second

// AppRun - запустить HTTP-сервер и дождаться сигнала остановки.
// При остановке дренируется SSE-реестр, закрываются продюсер,
// пул соединений и кеш.
func AppRun(
	cfg *config.Config,
	components *APIComponents,
	pg *postgres.Postgres,
	closeCache func(),
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: components.Engine,
	}

	go func() {
		log.Info("HTTP server listening", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down services...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownTimeout)
	defer cancel()

	components.Hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown", "error", err)
	}

	if err := components.Producer.Close(); err != nil {
		log.Error("Kafka producer close", "error", err)
	}

	pg.Close()
	closeCache()

	log.Info("Services stopped")
}
