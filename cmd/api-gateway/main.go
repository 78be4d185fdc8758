package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/lms-progress-api/api/swagger"
	"github.com/noah-isme/lms-progress-api/internal/handler"
	"github.com/noah-isme/lms-progress-api/internal/middleware"
	"github.com/noah-isme/lms-progress-api/internal/models"
	"github.com/noah-isme/lms-progress-api/internal/repository"
	"github.com/noah-isme/lms-progress-api/internal/service"
	"github.com/noah-isme/lms-progress-api/pkg/cache"
	"github.com/noah-isme/lms-progress-api/pkg/config"
	"github.com/noah-isme/lms-progress-api/pkg/database"
	"github.com/noah-isme/lms-progress-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-progress-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-progress-api/pkg/middleware/requestid"
)

// @title LMS Progress API
// @version 1.0.0
// @description Aggregated lesson progress dashboard for schools, cohorts and students
// @BasePath /api/v1
// @schemes http

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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Progress.BundleCacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	authService := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "lms-progress-api",
		SingleSession:      false,
	})

	progressService := service.NewProgressService(service.ProgressServiceParams{
		Repo:    progressRepo,
		Cache:   cacheService,
		Metrics: metricsService,
		Logger:  logr,
		Config: service.ProgressServiceConfig{
			BundleCacheTTL: cfg.Progress.BundleCacheTTL,
			SessionTTL:     cfg.Progress.SessionTTL,
		},
	})

	exportService := service.NewExportService(service.ExportServiceParams{
		Progress: progressService,
		Logger:   logr,
	})

	authHandler := handler.NewAuthHandler(authService)
	progressHandler := handler.NewProgressHandler(progressService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	viewerRoles := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff)

	progress := api.Group("/progress", middleware.JWT(authService), viewerRoles)
	{
		progress.GET("/schools", progressHandler.Schools)
		progress.GET("/schools/:id/cohorts", progressHandler.Cohorts)
		progress.GET("/hierarchy", progressHandler.Hierarchy)

		progress.GET("/selection", progressHandler.Selection)

		selection := progress.Group("/selection", middleware.Audit(userRepo, models.AuditActionSelectionChange, "progress_selection"))
		{
			selection.PUT("/school", progressHandler.SelectSchool)
			selection.PUT("/cohort", progressHandler.SelectCohort)
			selection.PUT("/student", progressHandler.SelectStudent)
			selection.PUT("/curriculum", progressHandler.SelectCurriculum)
			selection.PUT("/collection", progressHandler.SelectCollection)
			selection.PUT("/course", progressHandler.SelectCourse)
			selection.PUT("/chapter", progressHandler.SelectChapter)
		}

		progress.GET("/view", progressHandler.View)
		progress.GET("/options", progressHandler.Options)

		if cfg.Export.Enabled {
			progress.GET("/export", middleware.Audit(userRepo, models.AuditActionExport, "progress_export"), exportHandler.Export)
		}
	}

	ops := api.Group("/ops", middleware.JWT(authService), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	{
		ops.GET("/metrics", metricsHandler.Summary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
