// Package bot exposes the deal watcher over Telegram commands.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/notify"
	"github.com/juankaspain/vuelosrobot-sub001/internal/watch"
)

// Bot answers /check, /status and /help in Telegram chats.
type Bot struct {
	api          *tgbotapi.BotAPI
	checker      watch.CheckRunner
	watches      []domain.Watch
	threshold    float64
	allowedUsers []int64
	logger       *log.Logger
}

// Options contains configuration for creating a Bot.
type Options struct {
	Token     string
	Checker   watch.CheckRunner
	Watches   []domain.Watch
	Threshold float64

	// AllowedUsers restricts commands to these user IDs. Empty allows everyone.
	AllowedUsers []int64

	Logger *log.Logger
}

// New authenticates against the Bot API.
func New(opts Options) (*Bot, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	api, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{
		api:          api,
		checker:      opts.Checker,
		watches:      opts.Watches,
		threshold:    opts.Threshold,
		allowedUsers: opts.AllowedUsers,
		logger:       logger,
	}, nil
}

// Run processes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Printf("bot authorized as %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !b.userAllowed(message.From) {
		b.reply(message.Chat.ID, "❌ You are not allowed to use this bot.")
		return
	}

	switch message.Command() {
	case "start", "help":
		b.handleHelp(message)
	case "check":
		b.handleCheck(ctx, message)
	case "status":
		b.handleStatus(message)
	default:
		b.reply(message.Chat.ID, "🤔 Unknown command. Try /help.")
	}
}

// userAllowed checks the sender against the allow-list. Channel-style
// messages carry no sender; with an allow-list in place they are denied.
func (b *Bot) userAllowed(from *tgbotapi.User) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}
	if from == nil {
		return false
	}
	for _, id := range b.allowedUsers {
		if from.ID == id {
			return true
		}
	}
	return false
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	text := `👋 <b>Flight deal watcher</b>

<b>Commands:</b>
/check — check all watched routes now
/status — show watched routes and threshold
/help — this message`

	b.reply(message.Chat.ID, text)
}

func (b *Bot) handleCheck(ctx context.Context, message *tgbotapi.Message) {
	b.reply(message.Chat.ID, "🔍 <b>Checking fares...</b>\nThis takes a few seconds.")

	result, err := b.checker.Run(ctx, b.watches)
	if err != nil {
		b.reply(message.Chat.ID, fmt.Sprintf("❌ <b>Check failed:</b>\n<code>%v</code>", err))
		return
	}

	b.reply(message.Chat.ID, notify.FormatDigest(result.Verdicts))
}

func (b *Bot) handleStatus(message *tgbotapi.Message) {
	var sb strings.Builder
	sb.WriteString("📊 <b>Watcher status</b>\n\n<b>Routes:</b>\n")
	for _, w := range b.watches {
		sb.WriteString(fmt.Sprintf("  • <code>%s</code>\n", w.Route.Key()))
	}
	sb.WriteString(fmt.Sprintf("\n<b>Alert threshold:</b> %.2f EUR", b.threshold))

	b.reply(message.Chat.ID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("telegram send failed: %v", err)
	}
}
