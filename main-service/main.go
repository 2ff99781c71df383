package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/config"
	"github.com/MIgor26/explore-with-me/main-service/internal/handler"
	"github.com/MIgor26/explore-with-me/main-service/internal/middleware"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/MIgor26/explore-with-me/main-service/pkg/database"
	"github.com/MIgor26/explore-with-me/main-service/pkg/rabbitmq"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
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

	db := database.NewPostgresDB(cfg.DSN())

	statsClient := statsclient.NewClient(cfg.StatsServerURL, cfg.StatsTimeout)
	var hits service.HitRecorder = statsClient
	if cfg.StatsTransport == config.StatsOverAMQP {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		hits = publisher
	}
	log.Printf("hits are sent over %s, stats are read from %s", cfg.StatsTransport, cfg.StatsServerURL)

	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	compilationRepo := repository.NewCompilationRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	views := service.NewViewEnricher(requestRepo, statsClient, cfg.AppName)
	eventSvc := service.NewEventService(tx, eventRepo, userRepo, categoryRepo, views, hits, cfg.AppName)
	requestSvc := service.NewRequestService(tx, requestRepo, eventRepo, userRepo)
	userSvc := service.NewUserService(userRepo)
	categorySvc := service.NewCategoryService(categoryRepo, eventRepo)
	compilationSvc := service.NewCompilationService(compilationRepo, eventRepo, views)
	commentSvc := service.NewCommentService(commentRepo, eventRepo, userRepo)

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
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "main-service"})
	})

	handler.NewEventHandler(eventSvc).RegisterRoutes(e)
	handler.NewRequestHandler(requestSvc).RegisterRoutes(e)
	handler.NewUserHandler(userSvc).RegisterRoutes(e)
	handler.NewCategoryHandler(categorySvc).RegisterRoutes(e)
	handler.NewCompilationHandler(compilationSvc).RegisterRoutes(e)
	handler.NewCommentHandler(commentSvc).RegisterRoutes(e)

	go func() {
		log.Printf("Main Service starting on :%s", cfg.ServerPort)
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
