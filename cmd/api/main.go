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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-ris/ris-api/api/swagger"
	"github.com/campus-ris/ris-api/internal/handler"
	"github.com/campus-ris/ris-api/internal/middleware"
	"github.com/campus-ris/ris-api/internal/models"
	"github.com/campus-ris/ris-api/internal/repository"
	"github.com/campus-ris/ris-api/internal/service"
	"github.com/campus-ris/ris-api/pkg/cache"
	"github.com/campus-ris/ris-api/pkg/config"
	"github.com/campus-ris/ris-api/pkg/database"
	"github.com/campus-ris/ris-api/pkg/jobs"
	"github.com/campus-ris/ris-api/pkg/logger"
	corsmiddleware "github.com/campus-ris/ris-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ris/ris-api/pkg/middleware/requestid"
	"github.com/campus-ris/ris-api/pkg/realtime"
	"github.com/campus-ris/ris-api/pkg/storage"
)

// @title Research Repository API
// @version 1.0.0
// @description Student research repository: submissions, review workflow, adviser assignment
// @BasePath /api/v1
// @schemes http https
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching and edit lock degraded", "error", err)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init artifact storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	hub := realtime.NewHub(logr)
	defer hub.Close()

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	researchRepo := repository.NewResearchRepository(db)
	requestRepo := repository.NewAdviserRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	notificationSvc := service.NewNotificationService(notificationRepo, logr, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	})
	notificationSvc.Start(context.Background())
	defer notificationSvc.Stop()

	authSvc := service.NewAuthService(adminRepo, studentRepo, instructorRepo, validate, logr, service.AuthConfig{
		TokenSecret:           cfg.JWT.Secret,
		TokenExpiry:           cfg.JWT.Expiration,
		Issuer:                cfg.JWT.Issuer,
		SuperAdminEmail:       cfg.SuperAdmin.Email,
		SuperAdminPassword:    cfg.SuperAdmin.Password,
		AllowStudentSignup:    cfg.Signup.AllowStudents,
		AllowInstructorSignup: cfg.Signup.AllowInstructors,
		SignupEmailDomain:     cfg.Signup.EmailDomain,
	})
	researchSvc := service.NewResearchService(researchRepo, studentRepo, notificationSvc, signer, validate, logr, service.ResearchConfig{
		AllowReReview: cfg.Workflow.AllowReReview,
	})
	adviserSvc := service.NewAdviserService(requestRepo, researchRepo, instructorRepo, notificationSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, researchRepo, notificationSvc, validate, logr)
	accountSvc := service.NewAccountService(studentRepo, instructorRepo, adminRepo, validate, logr)
	reportSvc := service.NewReportService(reportRepo, studentRepo, instructorRepo, logr)
	dashboardSvc := service.NewDashboardService(studentRepo, instructorRepo, researchRepo, reportRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)
	editLockSvc := service.NewEditLockService(cacheRepo, hub, cfg.EditLock.TTL, logr)
	metricsSvc := service.NewMetricsService(hub.ViewerCount)

	authHandler := handler.NewAuthHandler(authSvc)
	researchHandler := handler.NewResearchHandler(researchSvc, store)
	instructorHandler := handler.NewInstructorHandler(studentSvc, adviserSvc)
	requestHandler := handler.NewAdviserRequestHandler(adviserSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, reportSvc)
	editModeHandler := handler.NewEditModeHandler(editLockSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Storage.MaxFileSize

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.GET("/ws", gin.WrapH(hub))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/admin/login", authHandler.AdminLogin)
	api.POST("/auth/federated/login", authHandler.FederatedLogin)

	// Signed token is the credential for artifact downloads.
	api.GET("/research/:id/file", researchHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc))
	{
		authed.GET("/profile", accountHandler.Profile)
		authed.PUT("/profile", accountHandler.UpdateProfile)

		authed.GET("/notifications", notificationHandler.List)
		authed.PUT("/notifications/:id/status", notificationHandler.UpdateStatus)

		authed.GET("/research/:id", researchHandler.Get)
		authed.GET("/research/:id/download-token", researchHandler.DownloadToken)
		authed.PUT("/research/:id/status",
			middleware.RequireKind(models.KindInstructor, models.KindAdmin), researchHandler.UpdateStatus)

		students := authed.Group("", middleware.RequireKind(models.KindStudent))
		{
			students.GET("/research", researchHandler.ListOwn)
			students.POST("/research", researchHandler.Submit)
			students.PUT("/research/:id", researchHandler.Update)
		}

		instructors := authed.Group("/instructor", middleware.RequireKind(models.KindInstructor))
		{
			instructors.GET("/submissions", instructorHandler.ListSubmissions)
			instructors.GET("/students", instructorHandler.ListStudents)
			instructors.POST("/students", instructorHandler.AddStudent)
			instructors.DELETE("/students/:studentNumber", instructorHandler.RemoveStudent)
			instructors.GET("/available-research", instructorHandler.AvailableResearch)
			instructors.POST("/adviser-requests", instructorHandler.SubmitAdviserRequest)
			instructors.GET("/adviser-requests", instructorHandler.ListAdviserRequests)
		}

		admin := authed.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/adviser-requests", requestHandler.List)
			admin.GET("/adviser-requests/stats", requestHandler.Stats)
			admin.PUT("/adviser-requests/:id/status",
				middleware.RequirePermission(models.PermDecideRequests), requestHandler.Decide)

			research := admin.Group("/research", middleware.RequirePermission(models.PermManageResearch))
			{
				research.GET("", researchHandler.List)
			}
			admin.PUT("/research/:id/archive",
				middleware.RequirePermission(models.PermManageResearch), researchHandler.Archive)
			admin.PUT("/research/:id/restore",
				middleware.RequirePermission(models.PermManageResearch), researchHandler.Restore)

			accounts := admin.Group("/accounts", middleware.RequirePermission(models.PermManageAccounts))
			{
				accounts.GET("/students", accountHandler.ListStudents)
				accounts.GET("/students/:id", accountHandler.GetStudent)
				accounts.PUT("/students/:id/archive", accountHandler.ArchiveStudent)
				accounts.PUT("/students/:id/restore", accountHandler.RestoreStudent)
				accounts.GET("/instructors", accountHandler.ListInstructors)
				accounts.GET("/instructors/:id", accountHandler.GetInstructor)
				accounts.PUT("/instructors/:id/archive", accountHandler.ArchiveInstructor)
				accounts.PUT("/instructors/:id/restore", accountHandler.RestoreInstructor)
			}

			admins := admin.Group("/admins", middleware.RequireSuperAdmin())
			{
				admins.POST("", accountHandler.CreateAdmin)
				admins.GET("", accountHandler.ListAdmins)
				admins.PUT("/:id/status", accountHandler.SetAdminActive)
				admins.PUT("/:id/permissions", accountHandler.SetAdminPermissions)
			}

			reports := admin.Group("/reports", middleware.RequirePermission(models.PermGenerateReport))
			{
				reports.GET("", reportHandler.Generate)
				reports.GET("/download", reportHandler.Download)
			}
			admin.GET("/courses", reportHandler.Courses)

			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/user-counts", dashboardHandler.UserCounts)
				dashboard.GET("/activity-stats", dashboardHandler.ActivityStats)
				dashboard.GET("/recent-activities", dashboardHandler.RecentActivities)
				dashboard.GET("/research-stats", dashboardHandler.ResearchStats)
				dashboard.GET("/research-status-trends", dashboardHandler.StatusTrends)
				dashboard.GET("/submission-trends", dashboardHandler.SubmissionTrends)
				dashboard.GET("/user-trends", dashboardHandler.UserTrends)
				dashboard.GET("/user-distribution", dashboardHandler.UserDistribution)
			}

			admin.POST("/edit-mode", editModeHandler.Toggle)
			admin.GET("/edit-mode", editModeHandler.Status)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
