package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/narrative-weaver/config"
	"github.com/oksasatya/narrative-weaver/internal/container"
	"github.com/oksasatya/narrative-weaver/internal/router"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.Build(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize store")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewEngine(c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		helpers.LogError(logger, "server forced to shutdown", err, nil)
	}
	c.Close(ctxShutdown)
	logger.Info("server exited properly")
}
