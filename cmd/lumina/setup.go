package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/internal/providers/calendar"
	"github.com/sandevgo/lumina/internal/providers/llm"
	"github.com/sandevgo/lumina/internal/service/assistant"
	"github.com/sandevgo/lumina/internal/service/command"
	"github.com/sandevgo/lumina/internal/service/directive"
	"github.com/sandevgo/lumina/internal/service/dispatch"
	"github.com/sandevgo/lumina/internal/service/memory"
	"github.com/sandevgo/lumina/internal/storage/sqlite"
	"github.com/sandevgo/lumina/internal/transport/cli"
	"github.com/sandevgo/lumina/internal/transport/telegram"
	"github.com/sandevgo/lumina/internal/transport/web"
	"github.com/sandevgo/lumina/pkg/log"
	"github.com/sandevgo/lumina/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providersCfg := config.NewProvidersConfig(ctx)
	calendarCfg := config.NewCalendarConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)

	// 2. Storage
	if err := os.MkdirAll(appCfg.GetRuntimePath(), 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	store := memory.NewStore(sqlite.NewMessagesRepo(db), sqlite.NewFactsRepo(db))
	mem := memory.NewMemory(
		store,
		memory.NewSysPrompt(appCfg),
		appCfg.HistoryLimit,
		memory.WithTokenBudget(appCfg.HistoryTokenBudget, memory.NewTiktokenCounter(ctx)),
	)

	// 3. Providers
	chain, err := llm.NewChain(ctx, providersCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM providers")
	}
	dispatcher := dispatch.NewDispatcher(chain, mem)

	// 4. Calendar
	cal, err := calendar.New(ctx, calendarCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize calendar")
	}
	extractor := directive.NewExtractor(cal)

	// 5. Assistant
	asst := assistant.NewAssistant(store, dispatcher, extractor)
	router := command.NewRouter(store, dispatcher, appCfg.HistoryLimit)

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, tgCfg, asst, router, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	tgCfg *config.TelegramConfig,
	asst *assistant.Assistant,
	router *command.Router,
	store *memory.Store,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableWeb {
		server := web.NewServer(ctx, config.NewWebConfig(ctx), asst, store)
		asst.AddMirror(server.Hub())
		services = append(services, server)
	}

	if tgCfg.Enabled() {
		bot, err := telegram.NewBot(ctx, tgCfg, asst, router)
		if err != nil {
			return nil, err
		}
		asst.AddMirror(bot)
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		console, err := cli.NewReadLine(cfg, asst, router)
		if err != nil {
			return nil, err
		}
		asst.AddMirror(console)
		services = append(services, console)
	}

	if len(services) == 0 {
		log.FromCtx(ctx).Warn().Msg("no front end enabled")
	}
	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
