package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renthub/internal/api"
	"renthub/internal/config"
	"renthub/internal/database"
	"renthub/internal/domain"
	"renthub/internal/events"
	"renthub/internal/google"
	"renthub/internal/logging"
	"renthub/internal/metrics"
	"renthub/internal/notify"
	"renthub/internal/repository"
	"renthub/internal/service"
	"renthub/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userLimiter := initRateLimiter(cfg, &logger)
	bus := events.NewEventBus()

	syncWorker := initSheetsSync(ctx, cfg, db, &logger)
	initTelegram(cfg, db, bus, &logger)

	clock := service.SystemClock{}
	bookingSvc := service.NewBookingService(db, db, db, clock, bus, syncWorker, cfg.Booking.DefaultPageSize, &logger)
	itemSvc := service.NewItemService(db, db, db, db, db, clock, cfg.Booking.DefaultPageSize, &logger)
	userSvc := service.NewUserService(db, &logger)
	requestSvc := service.NewRequestService(db, db, db, cfg.Booking.DefaultPageSize, &logger)

	httpServer := api.NewServer(cfg.API, bookingSvc, itemSvc, userSvc, requestSvc, userLimiter, &logger)

	startMonitoring(ctx, cfg, &logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

// initRateLimiter builds the per-user limiter. Redis is preferred when
// reachable; memory covers single-instance deployments and redis outages.
func initRateLimiter(cfg *config.Config, logger *zerolog.Logger) domain.RateLimiter {
	memory := repository.NewMemoryRateLimiter()
	if !cfg.Redis.Enabled {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, using in-memory rate limiter")
		return memory
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return repository.NewFailoverRateLimiter(repository.NewRedisRateLimiter(client), memory, logger)
}

// initSheetsSync starts the spreadsheet mirror worker when configured.
// Returns nil when sheets sync is disabled or misconfigured; booking
// writes then skip enqueueing.
func initSheetsSync(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) domain.SyncWorker {
	if !cfg.Google.Enabled {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets sync")
		return nil
	}

	w := worker.NewSheetsWorker(db, sheetsService, worker.RetryPolicy{}, logger)
	go w.Run(ctx)

	logger.Info().Msg("google sheets sync started")
	return w
}

func initTelegram(cfg *config.Config, db *database.DB, bus *events.EventBus, logger *zerolog.Logger) {
	if !cfg.Telegram.Enabled {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notify.NewTelegramNotifier(bot, db, logger).Register(bus)
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
}

func startMonitoring(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.Enabled {
		return
	}

	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Monitoring.Port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("monitoring server error")
		}
	}()
}
