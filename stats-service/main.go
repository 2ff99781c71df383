package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MIgor26/explore-with-me/stats-service/config"
	"github.com/MIgor26/explore-with-me/stats-service/internal/consumer"
	"github.com/MIgor26/explore-with-me/stats-service/internal/handler"
	"github.com/MIgor26/explore-with-me/stats-service/internal/middleware"
	"github.com/MIgor26/explore-with-me/stats-service/internal/repository"
	"github.com/MIgor26/explore-with-me/stats-service/internal/service"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/database"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrationsEnabled {
		if err := database.RunMigrations(cfg.DSN()); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	repo := repository.NewHitRepository(pool)
	svc := service.NewStatsService(repo)

	// Hits may also arrive asynchronously from the main service.
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewHitConsumer(svc).Start(msgs)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "stats-service"})
	})

	handler.NewStatsHandler(svc).RegisterRoutes(e)

	go func() {
		log.Printf("Stats Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
