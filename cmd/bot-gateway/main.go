package main

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"exchange-payout-bot/internal/adapters/audit"
	"exchange-payout-bot/internal/adapters/bot"
	"exchange-payout-bot/internal/adapters/repo"
	"exchange-payout-bot/internal/adapters/telegram"
	"exchange-payout-bot/internal/domain"
	"exchange-payout-bot/internal/infra/cache"
	"exchange-payout-bot/internal/infra/config"
	"exchange-payout-bot/internal/infra/db"
	httpserver "exchange-payout-bot/internal/infra/http"
	"exchange-payout-bot/internal/infra/log"
	"exchange-payout-bot/internal/infra/metrics"
	"exchange-payout-bot/internal/usecase/amounts"
	"exchange-payout-bot/internal/usecase/dialog"
	"exchange-payout-bot/internal/usecase/ledger"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, cfg.LogFile)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	policy, err := cfg.PayoutPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("некорректные ставки выплаты")
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("некорректный часовой пояс")
	}

	ledgerRepo, closeRepo := openLedgerRepo(ctx, cfg, logger)
	defer closeRepo()

	kv, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}

	parser := amounts.Parser{TagPrefixes: cfg.Ledger.TagPrefixes}
	ledgerService := ledger.NewService(ledgerRepo, policy, loc, logger)
	h := bot.NewHandler(botAPI, logger, bot.Deps{
		Ledger:       ledgerService,
		Wizard:       dialog.NewWizard(policy, parser, cfg.Report.MaxChars),
		Sessions:     cache.NewSessions(kv, cfg.SessionTTL),
		Cache:        kv,
		Audit:        audit.NewFileSink(cfg.AuditLogPath),
		Access:       cfg.AllowList(),
		Parser:       parser,
		Policy:       policy,
		LedgerChatID: cfg.Ledger.ChatID,
	})
	if cfg.AllowList().Empty() {
		logger.Warn().Msg("список доступа пуст: команды учёта отключены")
	}
	if cfg.Ledger.ChatID == 0 {
		logger.Warn().Msg("LEDGER_CHAT_ID не задан: сообщения в учёт не попадают")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	if cfg.Telegram.WebhookURL == "" {
		runPolling(ctx, botAPI, logger, h, addr)
		return
	}
	runWebhook(ctx, botAPI, logger, h, cfg, addr)
}

func runWebhook(ctx context.Context, botAPI *tgbotapi.BotAPI, logger zerolog.Logger, h *bot.Handler, cfg config.AppConfig, addr string) {
	link := cfg.Telegram.WebhookURL + cfg.Telegram.WebhookPath
	if cfg.Telegram.WebhookSecret != "" {
		link += "?" + httpserver.SecretParam + "=" + url.QueryEscape(cfg.Telegram.WebhookSecret)
	}
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		logger.Fatal().Err(err).Msg("некорректный адрес вебхука")
	}
	wh.AllowedUpdates = []string{"message", "edited_message", "channel_post", "edited_channel_post", "callback_query"}
	start := time.Now()
	_, err = botAPI.Request(wh)
	metrics.ObserveNetworkRequest("telegram_bot", "set_webhook", "webhook", start, err)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось зарегистрировать вебхук")
	}

	srv := httpserver.NewServer(logger)
	srv.MountWebhook(cfg.Telegram.WebhookPath, cfg.Telegram.WebhookSecret, telegram.WebhookHandler(h.HandleUpdate))
	go func() {
		if err := srv.Start(addr); err != nil {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("остановка бота")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func runPolling(ctx context.Context, botAPI *tgbotapi.BotAPI, logger zerolog.Logger, h *bot.Handler, addr string) {
	start := time.Now()
	_, err := botAPI.Request(tgbotapi.DeleteWebhookConfig{})
	metrics.ObserveNetworkRequest("telegram_bot", "delete_webhook", "webhook", start, err)
	if err != nil {
		logger.Warn().Err(err).Msg("не удалось снять вебхук")
	}
	metrics.StartServer(ctx, logger, addr)
	telegram.Poll(ctx, botAPI, logger, h.HandleUpdate)
	logger.Info().Msg("остановка бота")
}

func openLedgerRepo(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.LedgerRepo, func()) {
	if cfg.PGDSN == "" {
		if cfg.AppEnv != "dev" {
			logger.Fatal().Msg("PG_DSN не задан")
		}
		logger.Warn().Msg("PG_DSN не задан: учёт хранится в памяти")
		return repo.NewMemory(), func() {}
	}
	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	pg := repo.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		logger.Fatal().Err(err).Msg("не удалось подготовить схему БД")
	}
	return pg, pool.Close
}

func openCache(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.Cache, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR не задан: сессии и защита от повторов хранятся в памяти")
		return cache.NewMemory(), func() {}
	}
	client, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к Redis")
	}
	return cache.NewRedis(client), func() { _ = client.Close() }
}
