package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/athro-ai/athro-study-api/api/swagger"
	"github.com/athro-ai/athro-study-api/internal/handler"
	"github.com/athro-ai/athro-study-api/internal/middleware"
	"github.com/athro-ai/athro-study-api/internal/models"
	"github.com/athro-ai/athro-study-api/internal/repository"
	"github.com/athro-ai/athro-study-api/internal/service"
	"github.com/athro-ai/athro-study-api/pkg/ai"
	"github.com/athro-ai/athro-study-api/pkg/cache"
	"github.com/athro-ai/athro-study-api/pkg/config"
	"github.com/athro-ai/athro-study-api/pkg/database"
	"github.com/athro-ai/athro-study-api/pkg/jobs"
	"github.com/athro-ai/athro-study-api/pkg/logger"
	corsmiddleware "github.com/athro-ai/athro-study-api/pkg/middleware/cors"
	reqidmiddleware "github.com/athro-ai/athro-study-api/pkg/middleware/requestid"
	"github.com/athro-ai/athro-study-api/pkg/storage"

	exportpkg "github.com/athro-ai/athro-study-api/pkg/export"
)

// @title Athro Study API
// @version 1.0.0
// @description Confidence-weighted study planning and calendar backend for GCSE students
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching degraded", "error", err)
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck
		}
	}()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectPreferenceRepository(db)
	slotRepo := repository.NewStudySlotRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	planRepo := repository.NewPlanRepository(db)
	onboardingRepo := repository.NewOnboardingRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	eventMirror := repository.NewEventCacheRepository(redisClient, logr, cfg.Calendar.LocalCacheTTL)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "athro-study-api",
		Audience:           []string{"athro-web"},
	})

	plannerSvc := service.NewPlannerService(subjectRepo, slotRepo, planRepo, calendarRepo, eventMirror, db, validate, logr, service.PlannerConfig{
		ProposalTTL:         cfg.Planner.ProposalTTL,
		DefaultSlotCount:    cfg.Planner.DefaultSlotCount,
		DefaultSlotMinutes:  cfg.Planner.DefaultSlotMinutes,
		DefaultStartHour:    cfg.Planner.DefaultStartHour,
		DefaultTimezone:     cfg.Planner.DefaultTimezone,
		MaxSubjects:         cfg.Planner.MaxSubjects,
		MaxSessionsPerBatch: cfg.Planner.MaxSessionsPerBatch,
	})

	icsExporter := exportpkg.NewICSExporter("-//Athro AI//Study API//EN")
	calendarSvc := service.NewCalendarService(calendarRepo, eventMirror, icsExporter, validate, logr, service.CalendarServiceConfig{
		SuggestionTTL: cfg.Calendar.SuggestionTTL,
		FeedWindow:    cfg.Calendar.FeedWindow,
	})

	preferenceSvc := service.NewPreferenceService(subjectRepo, slotRepo, cacheSvc, validate, logr, service.PreferenceConfig{
		DefaultSlotCount:   cfg.Planner.DefaultSlotCount,
		DefaultSlotMinutes: cfg.Planner.DefaultSlotMinutes,
		MaxSubjects:        cfg.Planner.MaxSubjects,
	})

	onboardingSvc := service.NewOnboardingService(onboardingRepo, slotRepo, validate, logr, service.OnboardingConfig{
		DefaultSlotCount:   cfg.Planner.DefaultSlotCount,
		DefaultSlotMinutes: cfg.Planner.DefaultSlotMinutes,
		DefaultStartHour:   cfg.Planner.DefaultStartHour,
	})

	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metricsSvc, logr, cfg.Analytics.CacheTTL, cfg.Analytics.Enabled)
	presenceSvc := service.NewPresenceService(cacheRepo, validate, logr, cfg.Presence.HeartbeatTTL)

	chatClient := ai.NewChatClient(ai.ChatClientConfig{
		BaseURL: cfg.Tutor.ChatBaseURL,
		APIKey:  cfg.Tutor.ChatAPIKey,
		Model:   cfg.Tutor.ChatModel,
		Timeout: cfg.Tutor.Timeout,
	})
	ocrClient := ai.NewOCRClient(ai.OCRClientConfig{
		BaseURL: cfg.Tutor.OCRBaseURL,
		AppID:   cfg.Tutor.OCRAppID,
		AppKey:  cfg.Tutor.OCRAppKey,
		Timeout: cfg.Tutor.Timeout,
	})
	tutorSvc := service.NewTutorService(chatClient, ocrClient, validate, logr, cfg.Tutor.Enabled)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(planRepo, exportStore, signer, validate, logr, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
		Enabled:   cfg.Exports.Enabled,
	})
	exportQueue := jobs.NewQueue("exports", exportSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportSvc.SetQueue(exportQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportQueue.Start(ctx)
	defer exportQueue.Stop()

	scheduler := cron.New()
	if cfg.Exports.Enabled && cfg.Exports.CleanupSchedule != "" {
		_, err = scheduler.AddFunc(cfg.Exports.CleanupSchedule, func() {
			removed, cleanupErr := exportSvc.Cleanup(cfg.Exports.RetentionTTL)
			if cleanupErr != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", cleanupErr)
				return
			}
			if len(removed) > 0 {
				logr.Sugar().Infow("export cleanup removed files", "count", len(removed))
			}
		})
		if err != nil {
			logr.Sugar().Fatalw("invalid export cleanup schedule", "schedule", cfg.Exports.CleanupSchedule, "error", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc, metricsSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc)
	onboardingHandler := handler.NewOnboardingHandler(onboardingSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	tutorHandler := handler.NewTutorHandler(tutorSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	presenceHandler := handler.NewPresenceHandler(presenceSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		// The signed token carries authorization for downloads.
		api.GET("/exports/download", exportHandler.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.POST("/auth/logout", authHandler.Logout)

		authed.POST("/plans/generate", plannerHandler.Generate)
		authed.POST("/plans/confirm", plannerHandler.Confirm)
		authed.GET("/plans/current", plannerHandler.Current)
		authed.DELETE("/plans/:id", plannerHandler.Delete)

		authed.GET("/calendar/events", calendarHandler.Events)
		authed.GET("/calendar/day", calendarHandler.Day)
		authed.POST("/calendar/events", calendarHandler.Create)
		authed.PUT("/calendar/events/:id", calendarHandler.Update)
		authed.DELETE("/calendar/events/:id", calendarHandler.Delete)
		authed.POST("/calendar/suggested", calendarHandler.Suggest)
		authed.POST("/calendar/suggested/:id/accept", calendarHandler.Accept)
		authed.DELETE("/calendar/suggested/:id", calendarHandler.Dismiss)
		authed.GET("/calendar/feed.ics", calendarHandler.Feed)

		authed.GET("/preferences/subjects", preferenceHandler.Subjects)
		authed.PUT("/preferences/subjects", preferenceHandler.PutSubjects)
		authed.GET("/preferences/slots", preferenceHandler.Slots)
		authed.PUT("/preferences/slots", preferenceHandler.PutSlots)

		authed.GET("/onboarding", onboardingHandler.Get)
		authed.PUT("/onboarding", onboardingHandler.Update)

		authed.POST("/tutor/chat", tutorHandler.Chat)
		authed.POST("/tutor/ocr", tutorHandler.OCR)

		authed.GET("/analytics/summary", analyticsHandler.Summary)

		authed.POST("/exports", exportHandler.Create)
		authed.GET("/exports/:id", exportHandler.Get)

		authed.POST("/presence/heartbeat", presenceHandler.Heartbeat)
	}

	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(models.RoleStaff))
	{
		staff.GET("/analytics/students", analyticsHandler.Students)
		staff.GET("/analytics/system", analyticsHandler.System)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
