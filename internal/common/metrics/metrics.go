package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "dining_bot"

	BotSubsystem      = "bot"
	ScraperSubsystem  = "scraper"
	NotifierSubsystem = "notifier"
)

var (
	UserMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "user_messages_total",
			Help:      "Total number of user messages processed",
		},
		[]string{"message_type"},
	)

	CommandRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "command_replies_total",
			Help:      "Total number of command replies sent",
		},
		[]string{"status"},
	)
)

var (
	MenuScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: ScraperSubsystem,
			Name:      "menu_scrapes_total",
			Help:      "Total number of menu scrape sessions",
		},
		[]string{"status"},
	)

	MenuScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: ScraperSubsystem,
			Name:      "menu_scrape_duration_seconds",
			Help:      "Menu scrape session duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"status"},
	)
)

var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: NotifierSubsystem,
			Name:      "notifications_total",
			Help:      "Total number of daily menu notifications",
		},
		[]string{"status"},
	)

	SubscribersGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: NotifierSubsystem,
			Name:      "subscribers_count",
			Help:      "Number of subscribers seen by the last daily cycle",
		},
	)
)

func RecordUserMessage(messageType string) {
	UserMessagesTotal.WithLabelValues(messageType).Inc()
}

func RecordCommandReply(status string) {
	CommandRepliesTotal.WithLabelValues(status).Inc()
}

func RecordMenuScrape(status string, seconds float64) {
	MenuScrapesTotal.WithLabelValues(status).Inc()
	MenuScrapeDuration.WithLabelValues(status).Observe(seconds)
}

func RecordNotification(status string) {
	NotificationsTotal.WithLabelValues(status).Inc()
}

func SetSubscriberCount(count int) {
	SubscribersGauge.Set(float64(count))
}
