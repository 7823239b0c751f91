package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/vidgrab/vidgrab-bot/internal/config"
	"github.com/vidgrab/vidgrab-bot/internal/downloader"
	"github.com/vidgrab/vidgrab-bot/internal/handlers"
	"github.com/vidgrab/vidgrab-bot/internal/middleware"
	"github.com/vidgrab/vidgrab-bot/internal/scheduler"
	"github.com/vidgrab/vidgrab-bot/internal/services"
	"github.com/vidgrab/vidgrab-bot/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	log := newLogger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rdb, err := store.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	conversations := store.NewConversationStore(rdb, cfg.ConversationTTLHours)

	manager, err := services.NewManager(services.ManagerConfig{
		DataDir:          cfg.DataDir,
		MaxFreeDownloads: cfg.MaxFreeDownloads,
		WalletAddress:    cfg.WalletAddress,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open data directory")
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		cfg.BotToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create bot")
	}

	engine := downloader.NewSimulatedEngine("")

	downloadScheduler := scheduler.NewScheduler(
		manager,
		engine,
		b,
		scheduler.Config{
			Workers:       cfg.Workers,
			FlushInterval: cfg.FlushInterval,
		},
		log,
	)

	h := handlers.NewHandlers(manager, conversations, downloadScheduler, handlers.Config{
		AdminID:       cfg.AdminID,
		BackupDir:     cfg.BackupDir,
		RetentionDays: cfg.RetentionDays,
	}, log)

	downloadScheduler.Start()
	defer downloadScheduler.Stop()

	analyzer := middleware.NewUpdateAnalyzer(manager.Users, log)
	handlerChain := analyzer.AnalyzeUpdateMiddleware(h.MainHandler)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	log.Info().Msg("bot started")
	b.Start(ctx)
	log.Info().Msg("bot stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg != nil {
		if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
