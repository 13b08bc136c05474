// Package notify delivers state-change messages to the external channel.
// The channel is a pure sink: sends are fire and forget, failures are logged
// and swallowed, and the refresh pipeline never blocks on delivery.
package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/core/ports"
)

// TelegramNotifier sends messages to a fixed chat through the Bot API.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

var _ ports.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier authenticates the bot once at startup. An empty token
// or chat ID yields a nil notifier so deployments without a channel just run
// silently.
func NewTelegramNotifier(token string, chatID int64, log zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		log.Warn().Msg("telegram token or chat id not set, notifications disabled")
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, log: log}, nil
}

func (t *TelegramNotifier) Send(_ context.Context, _, message string) error {
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message))
	return err
}
