package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shenikar/ghostnet/docs"
	v1 "github.com/shenikar/ghostnet/internal/handler/http/v1"
	"github.com/shenikar/ghostnet/internal/metrics"
	"github.com/shenikar/ghostnet/internal/repository"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/shenikar/ghostnet/pkg/postgres"
	redisclient "github.com/shenikar/ghostnet/pkg/redis"
)

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on startup")
	return cmd
}

func serve(parent context.Context, skipMigrations bool) error {
	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Запуск миграций
	if !skipMigrations {
		log.Info("Running database migrations...")
		if err := postgres.MigrateUp(cfg); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		log.Info("Database migrations applied successfully")
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Кеш справочников в Redis; пустой REDIS_ADDR отключает кеш
	var catalogCache service.CatalogCache
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		catalogCache = repository.NewCatalogCache(redisClient, cfg.CatalogCacheTTL)
		log.Info("Successfully connected to Redis")
	} else {
		log.Warn("REDIS_ADDR is empty, catalog cache disabled")
	}

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lifecycleMetrics := metrics.New(registry)

	// Инициализация репозитория и сервисов
	store := repository.NewStore(dbpool)
	catalogService := service.NewCatalogService(store, catalogCache, log)
	personService := service.NewPersonService(store, log)
	reportService := service.NewReportService(store, catalogService, lifecycleMetrics, log)
	integrityService := service.NewIntegrityService(store, catalogCache, lifecycleMetrics, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(catalogService, personService, reportService, integrityService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	router.Use(v1.RequestMetricsMiddleware(lifecycleMetrics))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("Received shutdown signal, shutting down server...")
	case err := <-serverErr:
		return fmt.Errorf("error starting HTTP server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server gracefully stopped")
	return nil
}
