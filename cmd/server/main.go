package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"SignBridge/internal/ai"
	handlers "SignBridge/internal/handler"
	"SignBridge/internal/listeners"
	"SignBridge/internal/maintenance"
	"SignBridge/internal/models"
	"SignBridge/internal/pipeline"
	"SignBridge/internal/service"
	"SignBridge/pkg/cache"
	"SignBridge/pkg/config"
	"SignBridge/pkg/logger"
	"SignBridge/pkg/metrics"
	"SignBridge/pkg/middleware"
	"SignBridge/pkg/scheduler"
	stores "SignBridge/pkg/storage"
	"SignBridge/pkg/util"
)

func main() {
	if err := config.Load(); err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	cfg := config.GlobalConfig

	logger.Init(cfg.Log)
	defer logger.Sync()

	db, err := util.NewDatabase(cfg.DBDriver, cfg.DSN)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AuthIdentity{}, &models.AudioFile{}); err != nil {
		logger.Error("migrate", zap.Error(err))
		os.Exit(1)
	}

	appCache, err := cache.NewCache(cache.Config{
		Type:  cfg.CacheType,
		Redis: cache.RedisConfig{Addr: cfg.RedisAddr},
	})
	if err != nil {
		logger.Error("init cache", zap.Error(err))
		os.Exit(1)
	}
	defer appCache.Close()

	store := stores.NewMinioStore(cfg.Storage)

	m := metrics.NewMetrics()

	aiLog := logrus.New()
	aiClient := ai.NewClient(ai.Config{
		APIKey:          cfg.AIApiKey,
		BaseURL:         cfg.AIBaseURL,
		ChatModel:       cfg.AIChatModel,
		TranscribeModel: cfg.AITranscribeModel,
	}, aiLog).WithObserver(m)
	if !aiClient.TestConnection(context.Background()) {
		logger.Warn("AI API unreachable at startup, pipeline will degrade to simulated content")
	}

	accounts := service.NewAccountService(db, appCache)
	uploads := service.NewUploadService(db, store)
	listeners.RegisterUserListeners(appCache)

	hub := handlers.NewHub()
	voiceToSign := pipeline.NewVoiceToSign(uploads, aiClient, hub).WithObserver(m)
	signToVoice := pipeline.NewSignToVoice(nil, hub).WithObserver(m)
	runner := maintenance.NewRunner(db).WithObserver(m)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:       cfg.RateLimit,
		SkipPaths:  []string{"/healthz", "/metrics"},
		AddHeaders: true,
	}, nil)

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	h := handlers.NewHandlers(handlers.Deps{
		DB:          db,
		Accounts:    accounts,
		Uploads:     uploads,
		AIClient:    aiClient,
		VoiceToSign: voiceToSign,
		SignToVoice: signToVoice,
		Maintenance: runner,
		Hub:         hub,
		Metrics:     m,
		Limiter:     limiter,
	})
	h.Register(engine)

	var cr *scheduler.Cron
	if cfg.MaintenanceSchedule != "" {
		cr = scheduler.NewCron(nil)
		_, err := cr.Add(cfg.MaintenanceSchedule, scheduler.FuncJob(func(ctx context.Context) {
			runner.Run(ctx)
		}))
		if err != nil {
			logger.Error("schedule maintenance", zap.String("expr", cfg.MaintenanceSchedule), zap.Error(err))
			os.Exit(1)
		}
		cr.Start()
		defer cr.Stop()
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
