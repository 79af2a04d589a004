package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"exchange-payout-bot/internal/domain"
)

// AppConfig описывает конфигурацию бота.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Europe/Moscow"`
	Port   int    `envconfig:"PORT" default:"8080"`

	Telegram struct {
		Token         string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL    string `envconfig:"TG_WEBHOOK_URL"`
		WebhookPath   string `envconfig:"TG_WEBHOOK_PATH" default:"/bot/webhook"`
		WebhookSecret string `envconfig:"TG_WEBHOOK_SECRET"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Ledger struct {
		ChatID         int64   `envconfig:"LEDGER_CHAT_ID"`
		AllowedUserIDs []int64 `envconfig:"ALLOWED_USER_IDS"`
		AllowedChatIDs []int64 `envconfig:"ALLOWED_CHAT_IDS"`
		TagPrefixes    bool    `envconfig:"PARSER_TAG_PREFIXES" default:"true"`
	} `envconfig:""`

	Payout struct {
		NoDiscountRate     string `envconfig:"PAY_NO_DISCOUNT_RATE" default:"0.15"`
		DiscountRate       string `envconfig:"PAY_DISCOUNT_RATE" default:"0.10"`
		CheckAddNoDiscount string `envconfig:"CHECK_ADD_NO_DISCOUNT" default:"0.10"`
		CheckAddDiscount   string `envconfig:"CHECK_ADD_DISCOUNT" default:"0.05"`
	} `envconfig:""`

	Report struct {
		MaxChars int `envconfig:"REPORT_MAX_CHARS" default:"3900"`
	} `envconfig:""`

	AuditLogPath string        `envconfig:"AUDIT_LOG_PATH" default:"payouts.csv"`
	LogFile      string        `envconfig:"LOG_FILE"`
	SessionTTL   time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

// Load загружает конфиг из окружения. Файл .env, если он есть, читается первым.
func Load() AppConfig {
	_ = godotenv.Load()
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и проверяет денежные параметры.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	if _, err := cfg.PayoutPolicy(); err != nil {
		return AppConfig{}, err
	}
	if _, err := cfg.Location(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// PayoutPolicy собирает ставки выплаты и надбавки проверочных расчётов.
func (c AppConfig) PayoutPolicy() (domain.PayoutPolicy, error) {
	var (
		policy domain.PayoutPolicy
		err    error
	)
	if policy.PayNoDiscount, err = parseNonNegative("PAY_NO_DISCOUNT_RATE", c.Payout.NoDiscountRate); err != nil {
		return domain.PayoutPolicy{}, err
	}
	if policy.PayDiscount, err = parseNonNegative("PAY_DISCOUNT_RATE", c.Payout.DiscountRate); err != nil {
		return domain.PayoutPolicy{}, err
	}
	if policy.CheckAddNoDiscount, err = parseNonNegative("CHECK_ADD_NO_DISCOUNT", c.Payout.CheckAddNoDiscount); err != nil {
		return domain.PayoutPolicy{}, err
	}
	if policy.CheckAddDiscount, err = parseNonNegative("CHECK_ADD_DISCOUNT", c.Payout.CheckAddDiscount); err != nil {
		return domain.PayoutPolicy{}, err
	}
	return policy, nil
}

// AllowList возвращает список пользователей и чатов, которым доступны команды учёта.
func (c AppConfig) AllowList() domain.AllowList {
	return domain.NewAllowList(c.Ledger.AllowedUserIDs, c.Ledger.AllowedChatIDs)
}

// Location возвращает часовой пояс учёта.
func (c AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZ)
	if err != nil {
		return nil, fmt.Errorf("TZ %q: %w", c.TZ, err)
	}
	return loc, nil
}

func parseNonNegative(name, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", name, err)
	}
	if v.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s: значение не может быть отрицательным", name)
	}
	return v, nil
}
