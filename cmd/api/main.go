package main

import (
	"taskdeck/pkg/translator"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"taskdeck/internal/adapter/db"
	filestore "taskdeck/internal/adapter/file"
	httpadapter "taskdeck/internal/adapter/http"
	"taskdeck/internal/adapter/http/handlers"
	httpmiddleware "taskdeck/internal/adapter/http/middleware"
	memstore "taskdeck/internal/adapter/memory"
	"taskdeck/internal/app/cache"
	"taskdeck/internal/app/service"
	"taskdeck/internal/config"
	"taskdeck/internal/core/ports"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	// Make zap available to packages that log through zap.L().
	zap.ReplaceGlobals(logger)
	defer func() {
		if err := logger.Sync(); err != nil {
			zap.L().Debug("failed to sync logger", zap.Error(err))
		}
	}()

	translator.InitTranslator(translator.Config{
		TranslationFolder:  "pkg/translator/translation",
		SupportedLanguages: []string{translator.LanguageFr, translator.LanguageEn},
	})

	cfg := config.LoadConfig()

	var (
		taskRepository ports.TaskRepository
		sqlDB          *sqlx.DB
	)
	switch cfg.StoreBackend {
	case config.BackendMysql:
		sqlDB, err = db.ConnectDB(cfg)
		if err != nil {
			logger.Fatal("failed to connect to mysql", zap.Error(err))
		}
		defer func() {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("failed to close mysql connection", zap.Error(err))
			}
		}()
		taskRepository = db.NewTaskRepository(sqlDB)
	case config.BackendMemory:
		taskRepository = memstore.NewTaskRepository()
	default:
		fileRepo, err := filestore.NewTaskRepository(cfg.DataFile)
		if err != nil {
			logger.Fatal("failed to open task data file", zap.String("path", cfg.DataFile), zap.Error(err))
		}
		taskRepository = fileRepo
	}
	logger.Info("store backend selected", zap.String("backend", cfg.StoreBackend))

	taskService := service.NewTaskService(taskRepository, cache.NewQueryCache(cfg.CacheTTL))

	r := gin.New()
	r.Use(gin.Recovery(), httpmiddleware.GinZapMiddleware(logger))
	if cfg.TrustedProxies != nil {
		if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			logger.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	healthHandler := handlers.NewHealthHandler(sqlDB, cfg.StoreBackend)
	taskHandler := handlers.NewTaskHandler(taskService)
	httpadapter.RegisterRoutes(r, healthHandler, taskHandler)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	addr := ":" + port
	logger.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("could not start server", zap.Error(err))
	}
}
