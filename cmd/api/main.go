package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/migueg98/empleo-portal/internal/auth"
	"github.com/migueg98/empleo-portal/internal/cache"
	"github.com/migueg98/empleo-portal/internal/config"
	"github.com/migueg98/empleo-portal/internal/database"
	"github.com/migueg98/empleo-portal/internal/events"
	"github.com/migueg98/empleo-portal/internal/handlers"
	"github.com/migueg98/empleo-portal/internal/services"
	"github.com/migueg98/empleo-portal/internal/storage"
	"github.com/migueg98/empleo-portal/internal/store"
	"github.com/migueg98/empleo-portal/internal/workflow"
)

func main() {
	// 1. Environment & config
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	// 2. Database
	db, err := database.Connect(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 3. Change feed
	feed, err := events.Connect(cfg.NATSURL, cfg.NATSConnTimeout, logger)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer feed.Close()

	// 4. Stores + caches
	stores := store.NewGormStores(db, feed, logger)

	jobsCache := cache.NewJobs(stores.Jobs(), feed, logger)
	candidatesCache := cache.NewCandidates(stores.Candidates(), feed, logger)

	ctx := context.Background()
	if err := jobsCache.FetchAll(ctx); err != nil {
		logger.Warn("initial job fetch failed", zap.Error(err))
	}
	if err := candidatesCache.FetchAll(ctx); err != nil {
		logger.Warn("initial candidate fetch failed", zap.Error(err))
	}
	if err := jobsCache.Subscribe(); err != nil {
		logger.Fatal("Failed to subscribe jobs cache", zap.Error(err))
	}
	defer jobsCache.Close()
	if err := candidatesCache.Subscribe(); err != nil {
		logger.Fatal("Failed to subscribe candidates cache", zap.Error(err))
	}
	defer candidatesCache.Close()

	// 5. Blob store for CV attachments
	blobs, err := storage.NewDiskStore(cfg.BlobDir, cfg.PublicBaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to init blob store", zap.Error(err))
	}

	// 6. Admin sessions (token store in redis, bcrypt credential check)
	tokens := auth.NewRedisTokens(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	sessions, err := auth.NewSessions(tokens, cfg.AdminUsername, cfg.AdminPassword,
		cfg.AdminPasswordHash, cfg.SessionTTL, logger)
	if err != nil {
		logger.Fatal("Failed to init sessions", zap.Error(err))
	}

	// 7. Core services
	engine := workflow.NewEngine(candidatesCache, stores.Candidates(), logger)
	jobService := services.NewJobService(jobsCache, stores.Jobs(), stores.Sectors())
	candidateService := services.NewCandidateService(candidatesCache, stores.Candidates(),
		stores.Jobs(), blobs, logger)

	// 8. Handlers
	jobsHandler := handlers.NewJobsHandler(jobService)
	applicationsHandler := handlers.NewApplicationsHandler(candidateService)
	boardHandler := handlers.NewBoardHandler(candidatesCache, engine, candidateService)
	authHandler := handlers.NewAuthHandler(sessions, cfg.SessionTTL)

	// 9. Router & CORS
	r := gin.New()
	r.Use(gin.Logger(), handlers.Recovery(logger), handlers.WriteTimeout(cfg.WriteTimeout))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // For development only
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Static("/files", blobs.Root())

	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		// Public routes
		api.GET("/jobs", jobsHandler.List)
		api.GET("/jobs/:id", jobsHandler.Get)
		api.GET("/sectors", jobsHandler.Sectors)
		api.POST("/jobs/:id/applications", applicationsHandler.Submit)
		api.GET("/applications", applicationsHandler.MyApplications)

		// Auth
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		// Admin routes
		admin := api.Group("/admin", handlers.RequireSession(sessions))
		{
			admin.GET("/board", boardHandler.Board)
			admin.POST("/board/drop", boardHandler.Drop)
			admin.GET("/candidates/:id", boardHandler.Candidate)
			admin.GET("/candidates/:id/cv", boardHandler.DownloadCV)
			admin.PUT("/candidates/:id/status", boardHandler.UpdateStatus)
			admin.POST("/candidates/:id/move", boardHandler.Move)
			admin.DELETE("/candidates/:id", boardHandler.Delete)

			admin.GET("/jobs", jobsHandler.ListVacancies)
			admin.POST("/jobs", jobsHandler.CreateVacancy)
			admin.PATCH("/jobs/:id", jobsHandler.UpdateVacancy)
			admin.DELETE("/jobs/:id", jobsHandler.DeleteVacancy)
		}
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed to start", zap.Error(err))
	}
}
