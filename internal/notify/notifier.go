package notify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/campus-dev/go-dining-bot/internal/common/metrics"
	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

type SubscriberStore interface {
	Load(ctx context.Context) (map[int64]bool, error)
}

type MenuSource interface {
	FetchMenu(ctx context.Context, location, date, meal string) (*models.Menu, error)
}

type MessageSender interface {
	SendMarkdown(ctx context.Context, chatID int64, text string) error
}

// DailyNotifier fans one day's menus out to every subscriber. A failure for
// one subscriber/location pair is logged and skipped; remaining pairs are
// still attempted. There is no retry inside a cycle; the next scheduled
// cycle is the retry boundary.
type DailyNotifier struct {
	store     SubscriberStore
	source    MenuSource
	sender    MessageSender
	locations []string
	meal      string
	timezone  *time.Location
	logger    *slog.Logger
}

func NewDailyNotifier(
	store SubscriberStore,
	source MenuSource,
	sender MessageSender,
	locations []string,
	meal string,
	timezone *time.Location,
	logger *slog.Logger,
) *DailyNotifier {
	return &DailyNotifier{
		store:     store,
		source:    source,
		sender:    sender,
		locations: locations,
		meal:      meal,
		timezone:  timezone,
		logger:    logger,
	}
}

// NotifyAll runs one notification cycle for today's date. The returned error
// aggregates everything that was skipped; callers log it and move on, the
// cycle itself never aborts early.
func (n *DailyNotifier) NotifyAll(ctx context.Context) error {
	subscribers, err := n.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading subscribers: %w", err)
	}

	metrics.SetSubscriberCount(len(subscribers))

	if len(subscribers) == 0 {
		n.logger.Info("no subscribers, skipping daily cycle")
		return nil
	}

	date := models.FormatMenuDate(time.Now().In(n.timezone))

	n.logger.Info("starting daily notification cycle",
		"date", date,
		"meal", n.meal,
		"subscribers", len(subscribers),
		"locations", len(n.locations),
	)

	var errs error

	// One scrape per location per cycle; the rendered message is reused for
	// every subscriber. A location that fails to scrape is skipped for all
	// of them this cycle.
	messages := make([]string, 0, len(n.locations))

	for _, location := range n.locations {
		text, err := n.renderMenu(ctx, location, date)
		if err != nil {
			n.logger.Error("skipping dining hall for this cycle",
				"location", location,
				"error", err,
			)

			errs = multierr.Append(errs, fmt.Errorf("fetching %s: %w", location, err))

			continue
		}

		messages = append(messages, text)
	}

	ids := make([]int64, 0, len(subscribers))
	for id := range subscribers {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	for _, chatID := range ids {
		for _, text := range messages {
			if err := n.deliver(ctx, chatID, text); err != nil {
				n.logger.Error("skipping subscriber message",
					"chat_id", chatID,
					"error", err,
				)

				metrics.RecordNotification("failed")

				errs = multierr.Append(errs, err)

				continue
			}

			metrics.RecordNotification("sent")
		}
	}

	n.logger.Info("daily notification cycle finished")

	return errs
}

func (n *DailyNotifier) renderMenu(ctx context.Context, location, date string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while fetching %s: %v", location, r)
		}
	}()

	m, err := n.source.FetchMenu(ctx, location, date, n.meal)
	if err != nil {
		return "", err
	}

	return FormatMenu(m), nil
}

func (n *DailyNotifier) deliver(ctx context.Context, chatID int64, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while notifying chat %d: %v", chatID, r)
		}
	}()

	return n.sender.SendMarkdown(ctx, chatID, text)
}
