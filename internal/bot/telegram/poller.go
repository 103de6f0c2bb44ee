package telegram

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/campus-dev/go-dining-bot/internal/common/metrics"
	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

// A menu command scrapes several dining halls back to back, each behind its
// own browser session, so inbound processing gets a generous deadline.
const processTimeout = 3 * time.Minute

type BotService interface {
	ProcessCommand(ctx context.Context, command *models.Command) ([]*models.Reply, error)

	ProcessMessage(ctx context.Context, chatID int64, text string) ([]*models.Reply, error)
}

// Poller runs the foreground timeline: long-polls Telegram and dispatches
// updates one at a time in arrival order.
type Poller struct {
	client     *Client
	botService BotService
	logger     *slog.Logger
	stopChan   chan struct{}
}

func NewPoller(client *Client, botService BotService, logger *slog.Logger) *Poller {
	return &Poller{
		client:     client,
		botService: botService,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

func (p *Poller) Start() {
	p.logger.Info("starting Telegram poller")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := p.client.Bot().GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-p.stopChan:
				p.logger.Info("Telegram poller received stop signal")
				return
			case update := <-updates:
				p.processUpdate(&update)
			}
		}
	}()
}

func (p *Poller) Stop() {
	p.logger.Info("stopping Telegram poller")
	p.client.Bot().StopReceivingUpdates()
	close(p.stopChan)
}

func (p *Poller) processUpdate(update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	p.logger.Info("received message",
		"chat_id", chatID,
		"text", text,
	)

	messageType := "message"
	if update.Message.IsCommand() {
		messageType = "command"
	}

	metrics.RecordUserMessage(messageType)

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	var (
		replies []*models.Reply
		err     error
	)

	if update.Message.IsCommand() {
		command := &models.Command{
			ChatID:   chatID,
			UserID:   update.Message.From.ID,
			Text:     text,
			Username: update.Message.From.UserName,
			Type:     getCommandType("/" + update.Message.Command()),
		}

		replies, err = p.botService.ProcessCommand(ctx, command)
	} else {
		replies, err = p.botService.ProcessMessage(ctx, chatID, text)
	}

	if err != nil {
		p.logger.Error("error processing message",
			"error", err,
			"chat_id", chatID,
			"text", text,
		)

		metrics.RecordCommandReply("error")

		if len(replies) == 0 {
			replies = []*models.Reply{models.PlainReply("Sorry, something went wrong. Please try again later.")}
		}
	} else {
		metrics.RecordCommandReply("ok")
	}

	for _, reply := range replies {
		if reply == nil || reply.Text == "" {
			continue
		}

		if err := p.client.SendReply(ctx, chatID, reply); err != nil {
			p.logger.Error("error sending reply",
				"error", err,
				"chat_id", chatID,
			)
		}
	}
}

func getCommandType(commandName string) models.CommandType {
	switch commandName {
	case "/start":
		return models.CommandStart
	case "/help":
		return models.CommandHelp
	case "/menu":
		return models.CommandMenu
	case "/tomorrow":
		return models.CommandTomorrow
	case "/dininghalls":
		return models.CommandDiningHalls
	case "/subscribe":
		return models.CommandSubscribe
	case "/unsubscribe":
		return models.CommandUnsubscribe
	default:
		return models.CommandUnknown
	}
}
