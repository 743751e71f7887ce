package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-go-api/internal/config"
	"github.com/noah-isme/classroom-go-api/internal/database"
	gql "github.com/noah-isme/classroom-go-api/internal/graphql"
	"github.com/noah-isme/classroom-go-api/internal/handler"
	"github.com/noah-isme/classroom-go-api/internal/middleware"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/router"
	"github.com/noah-isme/classroom-go-api/internal/service"
	"github.com/noah-isme/classroom-go-api/internal/utils"
	"github.com/noah-isme/classroom-go-api/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.AssignmentStudent{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer cache.Close()
	} else {
		logger.Warn().Msg("redis url not configured, feed caching disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	sanitizer := utils.NewSanitizer()
	signer := token.NewSigner(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	authService := service.NewAuthService(userRepo, validate, signer, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, validate, sanitizer, service.AssignmentServiceOptions{
		Cache:           cache,
		CacheTTL:        cfg.FeedCacheTTL,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	}, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, sanitizer, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)

	graphqlHandler, err := gql.NewHandler(&gql.Resolver{
		Auth:        authService,
		Assignments: assignmentService,
		Submissions: submissionService,
	}, logger)
	if err != nil {
		log.Fatalf("failed to build graphql schema: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		GraphQLHandler:    graphqlHandler,
		JWTMiddleware:     middleware.JWTProtected(signer),
		JWTOptional:       middleware.JWTOptional(signer),
		AuthRateLimit:     middleware.RateLimit("auth", cfg.AuthRateMax, cfg.AuthRateWindow),
		APIRateLimit:      middleware.RateLimit("api", cfg.APIRateMax, cfg.APIRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
