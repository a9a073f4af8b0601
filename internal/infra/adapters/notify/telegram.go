package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier pushes a one-line message to a configured chat when a
// job reaches a terminal state. Outbound only; no polling loop.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram token empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) JobFinished(ctx context.Context, snap model.JobSnapshot) error {
	var text string
	if snap.Status == model.JobStatusCompleted {
		text = fmt.Sprintf("Study guide ready for job %s", snap.JobID)
	} else {
		text = fmt.Sprintf("Job %s failed: %s", snap.JobID, snap.Error)
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	return err
}
