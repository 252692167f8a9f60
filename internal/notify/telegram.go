package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram pushes notices to a single chat. Send failures are logged and
// dropped; a broken bot must never fail an edit.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// NewTelegram initializes the bot API with the given token.
func NewTelegram(token string, chatID int64, logger *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("telegram notifier authorized", "account", api.Self.UserName)
	return &Telegram{api: api, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) Notify(kind Kind, message string) {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("[%s] %s", kind, message))
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Warn("failed to send telegram notice", "error", err)
	}
}
