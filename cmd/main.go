package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/ai"
	"github.com/Vovarama1992/genbot/internal/config"
	"github.com/Vovarama1992/genbot/internal/conversation"
	"github.com/Vovarama1992/genbot/internal/delivery"
	"github.com/Vovarama1992/genbot/internal/domain"
	"github.com/Vovarama1992/genbot/internal/error_notificator"
	"github.com/Vovarama1992/genbot/internal/guard"
	"github.com/Vovarama1992/genbot/internal/imagegen"
	"github.com/Vovarama1992/genbot/internal/infra"
	"github.com/Vovarama1992/genbot/internal/ports"
	"github.com/Vovarama1992/genbot/internal/reports"
	"github.com/Vovarama1992/genbot/internal/supervisor"
	"github.com/Vovarama1992/genbot/internal/telegram"
)

const sessionCapacity = 10000

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// DB / INFRASTRUCTURE
	// =========================================================================

	db, err := infra.OpenDB(ctx, cfg.DatabaseURL, baseLogger)
	if err != nil {
		baseLogger.Fatal("[main] db init failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var archive ports.Archive = domain.NopArchive{}
	if cfg.S3.Enabled() {
		store, err := infra.NewS3Store(ctx, cfg.S3)
		if err != nil {
			baseLogger.Fatal("[main] s3 init failed", zap.Error(err))
		}
		archive = domain.NewArchiveService(store)
		baseLogger.Info("[main] archive enabled", zap.String("bucket", cfg.S3.Bucket))
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errInfra := error_notificator.NewInfra(cfg.AdminChatID, baseLogger)
	errService := error_notificator.NewService(errInfra)

	// =========================================================================
	// DOMAIN SERVICES / CLIENTS
	// =========================================================================

	recordRepo := infra.NewRecordRepo(db)
	recordService := domain.NewRecordService(recordRepo, errService)

	openAIClient := ai.NewOpenAIClient(cfg.ProxyAPIKey, cfg.ProxyAPIBaseURL, cfg.TextModel, baseLogger)
	textService := ai.NewTextService(openAIClient, recordService, errService, openAIClient.Model(), baseLogger)

	imageClient := imagegen.NewClient(
		cfg.FusionBrainURL,
		cfg.FusionBrainAPIKey,
		cfg.FusionBrainSecretKey,
		imagegen.WithLogger(baseLogger),
	)

	// =========================================================================
	// TELEGRAM BOT
	// =========================================================================

	opts := telegram.DefaultOptions()
	opts.GraceDelay = cfg.GraceDelay
	opts.ActionDelay = cfg.ActionDelay
	opts.UploadDelay = cfg.UploadDelay

	botApp := telegram.NewBotApp(telegram.Deps{
		Text:     textService,
		Images:   imageClient,
		Records:  recordService,
		Archive:  archive,
		Sessions: conversation.NewMachine(conversation.NewLRUStore(sessionCapacity, cfg.SessionTTL)),
		Flood:    guard.NewFloodGuard(cfg.FloodTTL, cfg.FloodCapacity),
		Stale:    guard.NewStalenessGuard(cfg.StaleAfter),
		Reports:  reports.NewSink(cfg.ReportsDir),
		Log:      baseLogger,
	}, opts)

	serve := func(ctx context.Context) error {
		return botApp.Serve(ctx, cfg.BotToken, func(bot *tgbotapi.BotAPI) {
			errInfra.SetBot(bot)
		})
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	recordHandler := delivery.NewRecordHandler(recordService, zl)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           delivery.NewRouter(recordHandler, cfg.AdminAPIToken),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + srv.Addr,
			Service: "genbot",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Log(logger.LogEntry{Level: "error", Message: "http server failed", Service: "genbot", Error: err})
		}
	}()

	// =========================================================================
	// RUN
	// =========================================================================

	if err := supervisor.New(serve, baseLogger).Run(ctx); err != nil {
		baseLogger.Error("[main] supervisor stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	baseLogger.Info("[main] bye")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
