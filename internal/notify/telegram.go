package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// TelegramSink sends deal alerts to one or more Telegram chats.
type TelegramSink struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *log.Logger
}

// NewTelegramSink authenticates against the Bot API and returns a sink
// targeting chatIDs.
func NewTelegramSink(token string, chatIDs []int64, logger *log.Logger) (*TelegramSink, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if len(chatIDs) == 0 {
		return nil, fmt.Errorf("at least one chat ID is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Printf("telegram sink authorized as %s", api.Self.UserName)

	return &TelegramSink{api: api, chatIDs: chatIDs, logger: logger}, nil
}

// Compile-time interface check.
var _ Sink = (*TelegramSink)(nil)

// Notify sends the formatted verdict to every configured chat.
// One failed chat does not block the rest.
func (s *TelegramSink) Notify(_ context.Context, verdict domain.DealVerdict) error {
	return s.send(FormatVerdict(verdict))
}

// SendDigest sends a multi-route summary to every configured chat.
func (s *TelegramSink) SendDigest(verdicts []domain.DealVerdict) error {
	return s.send(FormatDigest(verdicts))
}

func (s *TelegramSink) send(text string) error {
	var firstErr error
	for _, chatID := range s.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = "HTML"
		if _, err := s.api.Send(msg); err != nil {
			s.logger.Printf("telegram send to chat %d failed: %v", chatID, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("send to chat %d: %w", chatID, err)
			}
		}
	}
	return firstErr
}
