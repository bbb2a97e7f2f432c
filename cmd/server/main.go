package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/retailsense/backend-go/internal/api"
	"github.com/andresuchdata/retailsense/backend-go/internal/config"
	"github.com/andresuchdata/retailsense/backend-go/internal/service"
	"github.com/andresuchdata/retailsense/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dashboardService, err := service.NewFromConfig(cfg, registry)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to configure dashboard service")
	}

	loginCtx, cancelLogin := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
	if _, err := dashboardService.LoginFromConfig(loginCtx, cfg.Backend); err != nil {
		// Views stay reachable; they report the auth failure per section.
		logger.Log.Warn().Err(err).Msg("Startup login failed")
	}
	cancelLogin()

	dashboardService.Start(context.Background())

	router := api.NewRouter(&api.Services{
		DashboardService: dashboardService,
		Gatherer:         registry,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// In-flight requests get 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
