package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ideaboard/internal/auth"
	"ideaboard/internal/config"
	"ideaboard/internal/db"
	"ideaboard/internal/handlers"
	"ideaboard/internal/ledger"
	"ideaboard/internal/middleware"
	"ideaboard/internal/router"
	"ideaboard/internal/services"
	"ideaboard/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Database handle is constructed here and passed down explicitly; it is
	// closed when the process exits.
	conn, err := db.Open(cfg, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	sqlDB, err := conn.DB()
	if err != nil {
		logger.Fatal("database handle unavailable", zap.Error(err))
	}
	defer sqlDB.Close()

	cache, err := utils.NewTTLCache(cfg.CacheSize)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	// Collaborators.
	mailService := services.NewMailService(cfg, logger)
	newsFetcher := services.NewNewsFetcher(cfg.NewsSourceURL, cache, logger)
	backupTask := services.NewBackupTask(conn, cfg.BackupPath, cfg.BackupSchedule, logger)
	if err := backupTask.Start(); err != nil {
		logger.Fatal("backup task init failed", zap.Error(err))
	}
	defer backupTask.Stop()

	// Core services.
	boardLedger := ledger.New(conn, logger)
	authService := auth.NewService(conn, mailService, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("ideaboard_session", store))
	r.Use(middleware.LoadUser(conn))

	router.Register(r,
		handlers.NewIdeaHandler(boardLedger, cache, logger),
		handlers.NewAdminHandler(boardLedger, authService, cache, logger),
		handlers.NewAuthHandler(authService, logger),
		handlers.NewNewsHandler(newsFetcher),
	)

	logger.Info("idea board starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
