package main

import (
	"alcyxob/trainer-marketplace/internal/api"
	"alcyxob/trainer-marketplace/internal/config"
	"alcyxob/trainer-marketplace/internal/observability"
	"alcyxob/trainer-marketplace/internal/repository"
	"alcyxob/trainer-marketplace/internal/repository/memory"
	"alcyxob/trainer-marketplace/internal/repository/mongo"
	"alcyxob/trainer-marketplace/internal/service"
	"alcyxob/trainer-marketplace/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

type repositories struct {
	users    repository.UserRepository
	trainers repository.TrainerRepository
	courses  repository.CourseRepository
	close    func()
}

// @title Trainer Marketplace API
// @version 1.0
// @description Trainers, courses and the accounts that manage them.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	// --- Tracing ---
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			logger.Fatal("could not initialize tracing", zap.Error(err))
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	// --- Persistence ---
	repos, err := openRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("could not open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer repos.close()

	// --- Storage ---
	fileStorage, err := storage.New(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("could not initialize file storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	// --- Services ---
	tokens, err := service.NewTokenService(cfg.JWT)
	if err != nil {
		logger.Fatal("could not initialize token service", zap.Error(err))
	}
	authService := service.NewAuthService(repos.users, tokens, logger)
	trainerService := service.NewTrainerService(repos.users, repos.trainers, fileStorage, service.TrainerSettings{
		DefaultPassword: cfg.Trainer.DefaultPassword,
		MaxResumeSize:   cfg.Upload.MaxSize,
	}, logger)
	courseService := service.NewCourseService(repos.courses, repos.trainers, repos.users, logger)

	if err := authService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal("could not seed admin account", zap.Error(err))
	}

	// --- HTTP ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxSize
	router.Use(api.RequestID(), api.Recovery(logger), api.RequestLogger(logger))
	if cfg.Tracing.Enabled {
		router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}

	opts := api.RouteOptions{}
	if cfg.Metrics.Enabled {
		prom := observability.NewProm()
		router.Use(prom.GinMiddleware())
		opts.Metrics = prom.Handler()
	}
	if cfg.Storage.Driver == "local" {
		opts.UploadsDir = cfg.Storage.LocalDir
		opts.UploadsPath = uploadsPath(cfg.Storage.PublicBaseURL)
	}
	api.SetupRoutes(router, tokens, authService, trainerService, courseService, logger, opts)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Address), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}

func openRepositories(cfg config.Config, logger *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory repositories; data is lost on restart")
		return &repositories{
			users:    memory.NewUsersRepo(),
			trainers: memory.NewTrainersRepo(),
			courses:  memory.NewCoursesRepo(),
			close:    func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database.Name)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, db, logger)
	}()

	return &repositories{
		users:    mongo.NewMongoUserRepository(db),
		trainers: mongo.NewMongoTrainerRepository(db),
		courses:  mongo.NewMongoCourseRepository(db),
		close: func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		},
	}, nil
}

// uploadsPath extracts the route prefix from the public base URL ("/uploads" or "http://host/uploads").
func uploadsPath(publicBaseURL string) string {
	u, err := url.Parse(publicBaseURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/uploads"
	}
	return u.Path
}
