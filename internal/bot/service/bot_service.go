package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	domainerrors "github.com/campus-dev/go-dining-bot/internal/domain/errors"
	"github.com/campus-dev/go-dining-bot/internal/domain/models"
	"github.com/campus-dev/go-dining-bot/internal/notify"
)

const (
	helpMessage = `Welcome to the Stanford Dining Hall Menu Bot! Here are the available commands:

/menu - Get today's menu for all dining halls
/tomorrow - Get tomorrow's menu for all dining halls
/dininghalls - List available dining halls
/subscribe - Subscribe to daily menu updates
/unsubscribe - Unsubscribe from daily menu updates
/help - Show this help message`

	unknownCommandMessage = "I'm sorry, I don't understand that command. Type /help for a list of available commands."
	menuApologyMessage    = "Sorry, I couldn't fetch the menu right now. Please try again later."
	hallsApologyMessage   = "Sorry, I couldn't retrieve the list of dining halls at the moment. Please try again later."
	rateLimitedMessage    = "You're sending requests a bit too quickly. Please try again in a moment."
	invalidHallMessage    = "Invalid selection. Please choose a dining hall from the list."
)

type ChatStateRepository interface {
	GetState(ctx context.Context, chatID int64) (models.ChatState, error)

	SetState(ctx context.Context, chatID int64, state models.ChatState) error
}

type MenuSource interface {
	FetchMenu(ctx context.Context, location, date, meal string) (*models.Menu, error)

	ListLocations(ctx context.Context) ([]string, error)
}

type SubscriberStore interface {
	Add(ctx context.Context, chatID int64) (bool, error)

	Remove(ctx context.Context, chatID int64) (bool, error)
}

// BotService routes chat commands and free text to actions. Free text is only
// meaningful while a chat is in StateAwaitingDiningHall, which a /dininghalls
// interaction sets and any recognized command clears.
type BotService struct {
	chatStateRepo ChatStateRepository
	menuSource    MenuSource
	subscribers   SubscriberStore
	diningHalls   []string
	meal          string
	timezone      *time.Location
	logger        *slog.Logger

	limit    rate.Limit
	burst    int
	limiters map[int64]*rate.Limiter
	mu       sync.Mutex
}

func NewBotService(
	chatStateRepo ChatStateRepository,
	menuSource MenuSource,
	subscribers SubscriberStore,
	diningHalls []string,
	meal string,
	timezone *time.Location,
	rateLimitRequests int,
	rateLimitWindow time.Duration,
	logger *slog.Logger,
) *BotService {
	if rateLimitRequests < 1 {
		rateLimitRequests = 1
	}

	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}

	return &BotService{
		chatStateRepo: chatStateRepo,
		menuSource:    menuSource,
		subscribers:   subscribers,
		diningHalls:   diningHalls,
		meal:          meal,
		timezone:      timezone,
		logger:        logger,
		limit:         rate.Every(rateLimitWindow / time.Duration(rateLimitRequests)),
		burst:         rateLimitRequests,
		limiters:      make(map[int64]*rate.Limiter),
	}
}

func (s *BotService) ProcessCommand(ctx context.Context, command *models.Command) ([]*models.Reply, error) {
	if command.Type != models.CommandUnknown {
		// A recognized command always cancels a pending dining hall prompt.
		if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateIdle); err != nil {
			return nil, err
		}
	}

	switch command.Type {
	case models.CommandStart, models.CommandHelp:
		return []*models.Reply{models.PlainReply(helpMessage)}, nil
	case models.CommandMenu:
		return s.handleMenuCommand(ctx, command, 0)
	case models.CommandTomorrow:
		return s.handleMenuCommand(ctx, command, 1)
	case models.CommandDiningHalls:
		return s.handleDiningHallsCommand(ctx, command)
	case models.CommandSubscribe:
		return s.handleSubscribeCommand(ctx, command)
	case models.CommandUnsubscribe:
		return s.handleUnsubscribeCommand(ctx, command)
	default:
		return []*models.Reply{models.PlainReply(unknownCommandMessage)},
			&domainerrors.ErrUnknownCommand{Command: command.Text}
	}
}

func (s *BotService) ProcessMessage(ctx context.Context, chatID int64, text string) ([]*models.Reply, error) {
	state, err := s.chatStateRepo.GetState(ctx, chatID)
	if err != nil {
		return nil, err
	}

	switch state {
	case models.StateIdle:
		return []*models.Reply{models.PlainReply(unknownCommandMessage)}, nil
	case models.StateAwaitingDiningHall:
		return s.handleDiningHallChoice(ctx, chatID, text)
	default:
		return nil, &domainerrors.ErrUnknownChatState{State: int(state)}
	}
}

func (s *BotService) handleMenuCommand(ctx context.Context, command *models.Command, dayOffset int) ([]*models.Reply, error) {
	if !s.allowScrape(command.ChatID) {
		return []*models.Reply{models.PlainReply(rateLimitedMessage)}, nil
	}

	date := s.menuDate(dayOffset)
	replies := make([]*models.Reply, 0, len(s.diningHalls))

	for _, hall := range s.diningHalls {
		m, err := s.menuSource.FetchMenu(ctx, hall, date, s.meal)
		if err != nil {
			s.logger.Error("menu fetch failed",
				"chat_id", command.ChatID,
				"location", hall,
				"date", date,
				"error", err,
			)

			replies = append(replies, models.PlainReply(menuApologyMessage))

			continue
		}

		replies = append(replies, models.MarkdownReply(notify.FormatMenu(m)))
	}

	return replies, nil
}

func (s *BotService) handleDiningHallsCommand(ctx context.Context, command *models.Command) ([]*models.Reply, error) {
	if !s.allowScrape(command.ChatID) {
		return []*models.Reply{models.PlainReply(rateLimitedMessage)}, nil
	}

	halls, err := s.menuSource.ListLocations(ctx)
	if err != nil || len(halls) == 0 {
		if err != nil {
			s.logger.Error("listing dining halls failed",
				"chat_id", command.ChatID,
				"error", err,
			)
		}

		return []*models.Reply{models.PlainReply(hallsApologyMessage)}, nil
	}

	if err := s.chatStateRepo.SetState(ctx, command.ChatID, models.StateAwaitingDiningHall); err != nil {
		return nil, err
	}

	var sb strings.Builder

	sb.WriteString("Available dining halls:\n\n")

	for _, hall := range halls {
		sb.WriteString(fmt.Sprintf("• %s\n", hall))
	}

	reply := &models.Reply{
		Text:     sb.String(),
		Keyboard: halls,
	}

	return []*models.Reply{reply}, nil
}

func (s *BotService) handleSubscribeCommand(ctx context.Context, command *models.Command) ([]*models.Reply, error) {
	added, err := s.subscribers.Add(ctx, command.ChatID)
	if err != nil {
		s.logger.Error("subscribe failed",
			"chat_id", command.ChatID,
			"error", err,
		)

		return []*models.Reply{models.PlainReply("Sorry, something went wrong. Please try again later.")}, err
	}

	if !added {
		return []*models.Reply{models.PlainReply("You are already subscribed to daily menu updates.")}, nil
	}

	s.logger.Info("chat subscribed to daily menu updates", "chat_id", command.ChatID)

	return []*models.Reply{models.PlainReply("You have successfully subscribed to daily menu updates.")}, nil
}

func (s *BotService) handleUnsubscribeCommand(ctx context.Context, command *models.Command) ([]*models.Reply, error) {
	removed, err := s.subscribers.Remove(ctx, command.ChatID)
	if err != nil {
		s.logger.Error("unsubscribe failed",
			"chat_id", command.ChatID,
			"error", err,
		)

		return []*models.Reply{models.PlainReply("Sorry, something went wrong. Please try again later.")}, err
	}

	if !removed {
		return []*models.Reply{models.PlainReply("You are not currently subscribed to daily menu updates.")}, nil
	}

	s.logger.Info("chat unsubscribed from daily menu updates", "chat_id", command.ChatID)

	return []*models.Reply{models.PlainReply("You have successfully unsubscribed from daily menu updates.")}, nil
}

func (s *BotService) handleDiningHallChoice(ctx context.Context, chatID int64, text string) ([]*models.Reply, error) {
	choice := strings.TrimSpace(text)

	halls, err := s.menuSource.ListLocations(ctx)
	if err != nil {
		s.logger.Error("validating dining hall choice failed",
			"chat_id", chatID,
			"error", err,
		)

		return []*models.Reply{models.PlainReply(hallsApologyMessage)}, nil
	}

	if !slices.Contains(halls, choice) {
		// Keep waiting; the user may pick again from the keyboard.
		return []*models.Reply{models.PlainReply(invalidHallMessage)}, nil
	}

	if err := s.chatStateRepo.SetState(ctx, chatID, models.StateIdle); err != nil {
		return nil, err
	}

	m, err := s.menuSource.FetchMenu(ctx, choice, s.menuDate(0), s.meal)
	if err != nil {
		s.logger.Error("menu fetch failed",
			"chat_id", chatID,
			"location", choice,
			"error", err,
		)

		return []*models.Reply{{Text: menuApologyMessage, RemoveKeyboard: true}}, nil
	}

	reply := &models.Reply{
		Text:           notify.FormatMenu(m),
		Markdown:       true,
		RemoveKeyboard: true,
	}

	return []*models.Reply{reply}, nil
}

func (s *BotService) menuDate(dayOffset int) string {
	return models.FormatMenuDate(time.Now().In(s.timezone).AddDate(0, 0, dayOffset))
}

// allowScrape rate-limits scrape-triggering commands per chat; each menu
// request costs a browser session and several seconds.
func (s *BotService) allowScrape(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[chatID]
	if !exists {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[chatID] = limiter
	}

	return limiter.Allow()
}
