package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vessel-ops/internal/bot"
	"vessel-ops/internal/cache"
	"vessel-ops/internal/config"
	"vessel-ops/internal/httpapi"
	"vessel-ops/internal/logging"
	"vessel-ops/internal/repository"
	"vessel-ops/internal/service"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so that deferred cleanup completes before exiting.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("db", zap.Error(err))
		return 1
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	crewRepo := repository.NewCrewRepository(db)
	vesselRepo := repository.NewVesselRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	jobRepo := repository.NewYardJobRepository(db)
	watermarkRepo := repository.NewWatermarkRepository(db)

	var watermarkCache service.WatermarkCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		watermarkCache = cache.NewRedisWatermarkCache(rdb, cfg.WatermarkTTL)
		logger.Info("watermark cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	cleanupSvc := service.NewCleanupService(watermarkRepo, watermarkCache, logger.Named("cleanup"), taskRepo, jobRepo)
	vesselSvc := service.NewVesselService(vesselRepo)
	taskSvc := service.NewTaskService(taskRepo, cleanupSvc, logger.Named("tasks"))
	jobSvc := service.NewYardJobService(jobRepo, cleanupSvc, logger.Named("yard_jobs"))
	reminderSvc := service.NewReminderService(taskRepo, jobRepo)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.New(taskSvc, jobSvc, vesselSvc, logger.Named("http")).InLocation(cfg.Location()).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http api listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if cfg.BotEnabled() {
		telegramBot, err := bot.New(cfg.TelegramToken, crewRepo, vesselSvc, taskSvc, jobSvc, reminderSvc, cfg.Location(), logger.Named("bot"))
		if err != nil {
			logger.Error("bot", zap.Error(err))
			return 1
		}

		scheduler := service.NewSchedulerService(cfg.Location(), logger)
		report := func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("report", zap.Error(err))
			}
		}
		switch {
		case cfg.ReportTime != "":
			if _, err := scheduler.ScheduleDaily(cfg.ReportTime, report); err != nil {
				logger.Error("schedule reports", zap.Error(err))
				return 1
			}
		case cfg.ReportInterval > 0:
			if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, report); err != nil {
				logger.Error("schedule reports", zap.Error(err))
				return 1
			}
		}
		if scheduler.Entries() > 0 {
			scheduler.Start()
			defer scheduler.Stop()
		}

		g.Go(func() error {
			if err := telegramBot.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	logger.Info("vessel ops started")
	if err := g.Wait(); err != nil {
		logger.Error("stopped with error", zap.Error(err))
		return 1
	}
	logger.Info("shutdown complete")
	return 0
}
