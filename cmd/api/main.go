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
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coachdesk-api/internal/cache"
	"github.com/noah-isme/coachdesk-api/internal/config"
	"github.com/noah-isme/coachdesk-api/internal/database"
	"github.com/noah-isme/coachdesk-api/internal/handler"
	"github.com/noah-isme/coachdesk-api/internal/middleware"
	"github.com/noah-isme/coachdesk-api/internal/queryapi"
	"github.com/noah-isme/coachdesk-api/internal/repository"
	"github.com/noah-isme/coachdesk-api/internal/router"
	"github.com/noah-isme/coachdesk-api/internal/service"
	"github.com/noah-isme/coachdesk-api/pkg/grader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	cacheStore := cache.New(redisClient, logger)

	queryClient := queryapi.New(cfg.QueryAPIBaseURL, logger).WithToken(cfg.QueryAPIToken)

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grading events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	coachRepo := repository.NewCoachRepository(queryClient)
	journeyRepo := repository.NewJourneyRepository(queryClient)
	programRepo := repository.NewProgramRepository(queryClient)
	taskRepo := repository.NewTaskRepository(queryClient, logger)
	submissionRepo := repository.NewSubmissionRepository(queryClient, cfg.CDNBaseURL, logger)

	remoteGrader := grader.NewRemoteClient(cfg.GraderBaseURL, logger)

	var generator grader.RubricGenerator = remoteGrader
	var evaluator grader.Evaluator = remoteGrader
	if cfg.AIProvider == "openai" {
		provider, err := grader.NewOpenAIProvider(grader.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai provider: %v", err)
		}
		generator = provider
		evaluator = provider
	}

	progressHub := service.NewProgressHub()

	authService := service.NewAuthService(coachRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	profileService := service.NewProfileService(coachRepo, cacheStore, cfg.CacheTTL, logger)
	dashboardService := service.NewDashboardService(journeyRepo, programRepo, taskRepo, cacheStore, cfg.CacheTTL, logger)
	journeyService := service.NewJourneyService(journeyRepo, programRepo, taskRepo, cacheStore, cfg.CacheTTL, logger)
	courseService := service.NewCourseService(journeyRepo, programRepo, taskRepo, cacheStore, cfg.CacheTTL, logger)
	taskService := service.NewTaskService(taskRepo, programRepo, submissionRepo, journeyRepo, cacheStore, cfg.CacheTTL, logger)
	rubricService := service.NewRubricService(generator, remoteGrader, taskService, logger)
	gradingService := service.NewGradingService(evaluator, remoteGrader, taskService, progressHub, natsConn, cfg.NATSSubject, logger)
	attachmentService := service.NewAttachmentService(logger)

	deps := router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, validate, logger),
		ProfileHandler:    handler.NewProfileHandler(profileService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		JourneyHandler:    handler.NewJourneyHandler(journeyService, logger),
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		TaskHandler:       handler.NewTaskHandler(taskService, logger),
		RubricHandler:     handler.NewRubricHandler(rubricService, validate, logger),
		GradingHandler:    handler.NewGradingHandler(gradingService, progressHub, validate, logger),
		AttachmentHandler: handler.NewAttachmentHandler(attachmentService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, deps)

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
