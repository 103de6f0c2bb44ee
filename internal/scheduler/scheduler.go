package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type DailyNotifier interface {
	NotifyAll(ctx context.Context) error
}

// Scheduler fires the daily notification cycle at a fixed wall-clock time in
// a fixed timezone, forever. Cycle failures are logged; the loop always
// proceeds to the next day on schedule. Fire times are recomputed from the
// wall clock each cycle, so a restart at worst misses one cycle.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  DailyNotifier
	logger    *slog.Logger
	hour      int
	minute    int
	location  *time.Location
}

func NewScheduler(notifier DailyNotifier, hour, minute int, location *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(location),
		notifier:  notifier,
		logger:    logger,
		hour:      hour,
		minute:    minute,
		location:  location,
	}
}

func (s *Scheduler) Start() {
	fireAt := fmt.Sprintf("%02d:%02d", s.hour, s.minute)

	s.logger.Info("starting daily scheduler",
		"at", fireAt,
		"timezone", s.location.String(),
		"next_fire", NextFireTime(time.Now().In(s.location), s.hour, s.minute),
	)

	_, err := s.scheduler.Every(1).Day().At(fireAt).Do(func() {
		s.logger.Info("daily notification cycle fired")

		ctx := context.Background()
		if err := s.notifier.NotifyAll(ctx); err != nil {
			s.logger.Error("daily notification cycle finished with errors",
				"error", err,
			)
		}
	})

	if err != nil {
		s.logger.Error("failed to configure daily scheduler",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.logger.Info("stopping daily scheduler")
	s.scheduler.Stop()
}

// NextFireTime returns the next hour:minute instant strictly after now, in
// now's location. A now that lands exactly on the boundary fires tomorrow.
func NextFireTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
