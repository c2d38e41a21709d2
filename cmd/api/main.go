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

	"github.com/noah-isme/coloringbook-api/internal/config"
	"github.com/noah-isme/coloringbook-api/internal/database"
	"github.com/noah-isme/coloringbook-api/internal/handler"
	"github.com/noah-isme/coloringbook-api/internal/middleware"
	"github.com/noah-isme/coloringbook-api/internal/observability"
	"github.com/noah-isme/coloringbook-api/internal/repository"
	"github.com/noah-isme/coloringbook-api/internal/router"
	"github.com/noah-isme/coloringbook-api/internal/service"
	"github.com/noah-isme/coloringbook-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, logFile := observability.NewLogger(cfg.Log, cfg.AppName, os.Stdout)
	defer logFile.Close()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	probes := map[string]handler.HealthProbe{
		"database": database.Probe(db),
	}

	var mailQueue service.MailQueue = service.NewMemoryMailQueue()
	redisClient, err := database.ConnectRedis(context.Background(), cfg.RedisURL, 3*time.Second)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, submission dedupe disabled and mail queue kept in memory")
		redisClient = nil
	} else {
		defer redisClient.Close()
		mailQueue = service.NewRedisMailQueue(redisClient, cfg.Mail.QueueKey)
		probes["redis"] = database.RedisProbe(redisClient)
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, submission events disabled")
		natsConn = nil
	} else {
		defer natsConn.Drain()
	}

	var sender mailer.Sender = mailer.NewLogSender(logger)
	if cfg.Mail.SMTPEnabled() {
		smtpSender, err := mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
		}, logger)
		if err != nil {
			log.Fatalf("failed to configure smtp: %v", err)
		}
		sender = smtpSender
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	languageRepo := repository.NewLanguageRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	colorRepo := repository.NewColorRepository(db)
	pageRepo := repository.NewPageRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	actionRepo := repository.NewActionRepository(db)
	fillRepo := repository.NewFillRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	pipeline := service.NewPipeline(languageRepo, areaRepo, colorRepo, pageRepo, logger)
	events := service.NewNATSEventPublisher(natsConn, cfg.EventsSubject, logger)
	mailService := service.NewMailService(mailQueue, logger)
	submissionService := service.NewSubmissionService(surveyRepo, submissionRepo, pipeline, redisClient, events, mailService, validate, cfg.DedupeTTL, logger)
	surveyService := service.NewSurveyService(surveyRepo, pageRepo, logger)
	exportService := service.NewExportService(surveyRepo, pageRepo, actionRepo, fillRepo, logger)
	seedService := service.NewSeedService(catalogRepo, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	submitLimiter := middleware.RateLimit("submit", cfg.RateLimit, time.Minute)
	exportGuard := middleware.RequireToken(middleware.HeaderAdminToken, cfg.AdminToken)
	if cfg.AdminToken == "" {
		logger.Warn().Msg("no admin token configured, export routes are unauthenticated")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SurveyHandler: handler.NewSurveyHandler(surveyService, submissionService, submitLimiter, logger),
		ExportHandler: handler.NewExportHandler(exportService, exportGuard, logger),
		SeedHandler:   handler.NewSeedHandler(seedService, logger),
		HealthProbes:  probes,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker := service.NewMailWorker(mailQueue, sender, cfg.Mail.From, cfg.Mail.MaxRetries, cfg.Mail.PollInterval, logger)
	go worker.Run(workerCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
	stopWorker()
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
