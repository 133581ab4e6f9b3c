package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"pumpwatch/pkg/errors"
	"pumpwatch/pkg/logger"
)

// Config contains Telegram notifier configuration.
type Config struct {
	Token          string
	ChatID         int64
	HTTPTimeout    time.Duration
	RateLimitBurst int // default: 30
	RateLimitRate  int // per second, default: 20
}

// Notifier pushes plain-text messages to a single configured chat.
// Delivery is best-effort: callers log failures and move on.
type Notifier struct {
	api         *tgbotapi.BotAPI
	chatID      int64
	rateLimiter *rate.Limiter
	log         *logger.Logger
}

// NewNotifier creates a Telegram notifier bound to one chat.
func NewNotifier(cfg Config, log *logger.Logger) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram chat id is required")
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 30
	}
	if cfg.RateLimitRate == 0 {
		cfg.RateLimitRate = 20
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	log.Infof("Authorized on account %s", api.Self.UserName)

	return &Notifier{
		api:         api,
		chatID:      cfg.ChatID,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRate), cfg.RateLimitBurst),
		log:         log.With("component", "telegram_notifier"),
	}, nil
}

// Send delivers a text message to the configured chat.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if err := n.rateLimiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrNotificationFailed, err.Error())
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warnw("Telegram send failed", "error", err)
		return errors.Wrap(errors.ErrNotificationFailed, err.Error())
	}

	return nil
}
