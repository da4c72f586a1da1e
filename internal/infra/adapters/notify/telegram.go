package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"video-pipeline-monitor/internal/domain/ports/adapter"
	"video-pipeline-monitor/internal/infra/metrics"
)

// Compile-time check
var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier relays terminal-state notifications to a Telegram chat.
// The SaaS routes per-user delivery itself; this channel is the ops/user
// bridge the monitor daemon owns.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier ready")
	return &TelegramNotifier{bot: bot, chatID: chatID, log: logger}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, n adapter.Notification) error {
	text := fmt.Sprintf("%s\n%s\n\nuser: %s  task: %s", n.Title, n.Body, n.UserID, n.TaskID)
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	metrics.IncNotification(string(n.Kind), "telegram")
	return nil
}
