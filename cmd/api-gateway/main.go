package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-gateway/api/swagger"
	"github.com/noah-isme/school-portal-gateway/internal/backend"
	"github.com/noah-isme/school-portal-gateway/internal/handler"
	internalmiddleware "github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/repository"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/cache"
	"github.com/noah-isme/school-portal-gateway/pkg/config"
	"github.com/noah-isme/school-portal-gateway/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-gateway/pkg/middleware/requestid"
)

// @title School Portal Gateway
// @version 1.0.0
// @description Session-authenticated gateway in front of the school backend.
// @BasePath /api
// @schemes http https

const shutdownTimeout = 15 * time.Second

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

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	redisClient, err := cache.NewRedis(context.Background(), cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unreachable at startup, grading setting reads go to the backend until it recovers", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.GradeSettingTTL, logr, redisClient != nil)

	var observer backend.Observer
	if metricsSvc != nil {
		observer = metricsSvc
	}
	client := backend.NewClient(cfg.Backend, observer, logr)
	manager := session.NewManager(cfg.Session)
	validate := validator.New()

	gradebookSvc := service.NewGradebookService(client, logr)
	attendanceSvc := service.NewAttendanceService(client, logr)
	settingSvc := service.NewGradeSettingService(client, cacheSvc, cfg.Cache.GradeSettingTTL, validate, logr)
	reportSvc := service.NewReportService(validate, logr)

	checks := map[string]handler.Pinger{}
	if check := cache.Check(redisClient); check != nil {
		checks["redis"] = check
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
	}
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterRoutes(r, cfg.APIPrefix, manager, handler.Handlers{
		Gradebook:    handler.NewGradebookHandler(gradebookSvc),
		Attendance:   handler.NewAttendanceHandler(attendanceSvc),
		GradeSetting: handler.NewGradeSettingHandler(settingSvc, cfg.APIPrefix),
		Report:       handler.NewReportHandler(reportSvc),
		Session:      handler.NewSessionHandler(manager),
		Proxy:        handler.NewProxyHandler(client, cfg.APIPrefix, cfg.Proxy.PassthroughPrefixes),
		Metrics:      handler.NewMetricsHandler(metricsSvc, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
