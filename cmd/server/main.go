package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"blogcms/docs"
	"blogcms/internal/auth"
	"blogcms/internal/cache"
	"blogcms/internal/config"
	"blogcms/internal/db"
	"blogcms/internal/events"
	"blogcms/internal/handler"
	"blogcms/internal/logging"
	"blogcms/internal/repository"
	"blogcms/internal/router"
	"blogcms/internal/service"
	"blogcms/internal/storage"
)

// @title Blog CMS API
// @version 1.0
// @description Blog content management API with posts, categories, tags, image uploads and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.IsProduction() && cfg.JWTSecret == "change-me" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	defer db.Close(gormDB)

	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient != nil {
		if err := cacheClient.Ping(context.Background()); err != nil {
			log.WithError(err).Warn("redis unreachable, serving uncached")
		}
		defer cacheClient.Close()
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.WithError(err).Fatal("upload storage init")
	}

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	// Initialize repositories
	postRepo := repository.NewPostRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(userRepo, jwtService)
	uploadService := service.NewUploadService(store)
	postService := service.NewPostService(postRepo, uploadService, cacheClient, publisher, log)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient)
	tagService := service.NewTagService(tagRepo, cacheClient)

	e := echo.New()
	router.Register(e, cfg, log, authService, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Post:     handler.NewPostHandler(postService, authService),
		Category: handler.NewCategoryHandler(categoryService),
		Tag:      handler.NewTagHandler(tagService),
		Upload:   handler.NewUploadHandler(uploadService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.WithField("url", swaggerURL(cfg)).Info("swagger documentation available")

	go func() {
		addr := ":" + cfg.ServerPort
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.UploadBackend == "s3" {
		return storage.NewS3(context.Background(), cfg.S3Bucket, cfg.S3Prefix, cfg.S3BaseURL)
	}
	return storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
}

// newPublisher falls back to discarding events when the broker is not
// configured or unreachable.
func newPublisher(cfg *config.Config, log logrus.FieldLogger) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.WithError(err).Warn("amqp unavailable, events disabled")
		return events.Nop{}
	}
	return p
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
