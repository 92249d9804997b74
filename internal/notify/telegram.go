package notify

import (
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Gateway is the outbound messaging channel. Delivery is best-effort: state
// changes are committed before a send is attempted, and callers log failures
// instead of propagating them.
type Gateway interface {
	SendMessage(chatID string, text string) error
	SendMessageMarkdown(chatID string, text string, markup any) error
}

// TelegramGateway sends messages through the Telegram Bot API.
type TelegramGateway struct {
	botAPI *tgbotapi.BotAPI
	log    *slog.Logger
}

func NewTelegramGateway(botAPI *tgbotapi.BotAPI, log *slog.Logger) *TelegramGateway {
	return &TelegramGateway{botAPI: botAPI, log: log}
}

// SendMessage sends a plain text message to the chat.
func (g *TelegramGateway) SendMessage(chatID string, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(id, text)
	if _, err := g.botAPI.Send(msg); err != nil {
		g.log.Error("failed to send message", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

// SendMessageMarkdown sends a Markdown message with an optional reply markup
// (inline keyboard, location request keyboard, ...).
func (g *TelegramGateway) SendMessageMarkdown(chatID string, text string, markup any) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := g.botAPI.Send(msg); err != nil {
		g.log.Error("failed to send message with markup", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

// TestConnection verifies the bot token against the Telegram API.
func (g *TelegramGateway) TestConnection() error {
	if _, err := g.botAPI.GetMe(); err != nil {
		return fmt.Errorf("failed to connect to Telegram API: %w", err)
	}
	return nil
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return id, nil
}
