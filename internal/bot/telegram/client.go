package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	domainerrors "github.com/campus-dev/go-dining-bot/internal/domain/errors"
	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

// Client wraps the Telegram Bot API for outbound messages. Delivery is
// best-effort: failures surface as ErrDeliveryFailed and are never retried
// within a cycle.
type Client struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewClient(token string, logger *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram API: %w", err)
	}

	logger.Info("authorized on Telegram", "username", bot.Self.UserName)

	return &Client{
		bot:    bot,
		logger: logger,
	}, nil
}

func (c *Client) Bot() *tgbotapi.BotAPI {
	return c.bot
}

// SetCommands registers the command list so clients show completion hints.
func (c *Client) SetCommands(ctx context.Context) error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "menu", Description: "Get today's menu"},
		{Command: "tomorrow", Description: "Get tomorrow's menu"},
		{Command: "dininghalls", Description: "List available dining halls"},
		{Command: "subscribe", Description: "Subscribe to daily menu updates"},
		{Command: "unsubscribe", Description: "Unsubscribe from daily menu updates"},
		{Command: "help", Description: "Show the help message"},
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("registering bot commands: %w", err)
	}

	return nil
}

func (c *Client) SendReply(ctx context.Context, chatID int64, reply *models.Reply) error {
	if err := ctx.Err(); err != nil {
		return &domainerrors.ErrDeliveryFailed{ChatID: chatID, Cause: err}
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)

	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	switch {
	case len(reply.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(reply.Keyboard))
		for _, label := range reply.Keyboard {
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
		}

		msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(rows...)
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := c.bot.Send(msg); err != nil {
		return &domainerrors.ErrDeliveryFailed{ChatID: chatID, Cause: err}
	}

	return nil
}

func (c *Client) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	return c.SendReply(ctx, chatID, models.MarkdownReply(text))
}

func (c *Client) SendPlain(ctx context.Context, chatID int64, text string) error {
	return c.SendReply(ctx, chatID, models.PlainReply(text))
}
