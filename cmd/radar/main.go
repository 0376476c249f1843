package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tcgradar/internal/cascade"
	"tcgradar/internal/config"
	cronrunner "tcgradar/internal/cron"
	"tcgradar/internal/db"
	"tcgradar/internal/engine"
	"tcgradar/internal/generator"
	"tcgradar/internal/handler"
	"tcgradar/internal/logger"
	"tcgradar/internal/money"
	"tcgradar/internal/notify"
	"tcgradar/internal/orchestrator"
	gormrepository "tcgradar/internal/repository/gorm"
	"tcgradar/internal/scraper"
	"tcgradar/internal/source"
	"tcgradar/internal/trend"
)

func main() {
	cfgPath := os.Getenv("RADAR_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RADAR_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.Ping(dbConn); err != nil {
		logger.Fatal("db unreachable", zap.Error(err))
	}
	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	if cfg.DB.EnableRLS {
		if err := db.EnableRowLevelSecurity(dbConn); err != nil {
			logger.Fatal("row level security setup failed", zap.Error(err))
		}
	}

	store := gormrepository.New(dbConn.Gorm)

	kernel := money.NewKernel(cfg.Fees, cfg.Customs)
	rules := engine.New(cfg.Engine, kernel, cfg.Features.EnableBundleLogic)
	trends := trend.New(store)
	rates := money.NewCachedRates(cfg.Forex, logger)

	var notifiers []notify.Notifier
	if cfg.Notify.Telegram.BotToken != "" {
		notifiers = append(notifiers, notify.NewTelegram(cfg.Notify, logger))
	}
	if cfg.Notify.Discord.BotToken != "" {
		notifiers = append(notifiers, notify.NewDiscord(cfg.Notify, logger))
	}
	if len(notifiers) == 0 {
		logger.Warn("no notifier configured, signals persist without delivery")
	}

	gen := generator.New(store, rules, trends, rates, notifiers, cfg, logger)

	buySide := source.NewJustTCG(cfg.Sources)
	sellSide := source.NewEBay(cfg.Sources)
	metadata := source.NewPokemonTCG(cfg.Sources)
	velocity := source.NewPokeTrace(cfg.Sources)
	var listingScraper scraper.Scraper = scraper.Disabled{}
	if cfg.Features.EnableLayer3Scraping {
		logger.Warn("layer 3 scraping enabled but no scraper backend is linked")
	}
	scheduler := orchestrator.New(store, buySide, sellSide, metadata, velocity, listingScraper, gen, cfg, logger)

	cascadeCtl := cascade.New(store, cfg.Cascade, cfg.Scan.SignalTTL, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	signalHandler := &handler.SignalHandler{Repo: store}
	signalHandler.Register(router)
	adminHandler := &handler.AdminHandler{Repo: store}
	adminHandler.Register(router)
	boostHandler := &handler.BoostHandler{Scheduler: scheduler}
	boostHandler.Register(router)
	cardHandler := &handler.CardHandler{Repo: store}
	cardHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	_, err = cronRunner.Add(everySpec(cfg.Cascade.SweepInterval), func(ctx context.Context) {
		if err := cascadeCtl.Sweep(ctx); err != nil {
			logger.Warn("cascade sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("cascade sweep schedule failed", zap.Error(err))
	}
	_, err = cronRunner.Add("0 0 4 * * *", func(ctx context.Context) {
		cutoff := time.Now().UTC().Add(-cfg.Scan.HistoryRetention)
		deleted, err := store.DeletePriceHistoryBefore(ctx, cutoff)
		if err != nil {
			logger.Warn("history prune failed", zap.Error(err))
			return
		}
		signals, err := store.AdminDeleteSignalsBefore(ctx, cutoff)
		if err != nil {
			logger.Warn("signal prune failed", zap.Error(err))
			return
		}
		logger.Info("retention prune done",
			zap.Int64("history_rows", deleted),
			zap.Int64("signal_rows", signals))
	})
	if err != nil {
		logger.Fatal("history prune schedule failed", zap.Error(err))
	}
	cronRunner.Start()

	go scheduler.Run(ctx)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
	cronRunner.Stop()
}

func everySpec(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Tenant-ID")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
