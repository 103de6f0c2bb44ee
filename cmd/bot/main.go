package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-dev/go-dining-bot/internal/bot/repository/memory"
	botservice "github.com/campus-dev/go-dining-bot/internal/bot/service"
	"github.com/campus-dev/go-dining-bot/internal/bot/telegram"
	"github.com/campus-dev/go-dining-bot/internal/common/metrics"
	"github.com/campus-dev/go-dining-bot/internal/config"
	"github.com/campus-dev/go-dining-bot/internal/menu"
	"github.com/campus-dev/go-dining-bot/internal/notify"
	"github.com/campus-dev/go-dining-bot/internal/scheduler"
	"github.com/campus-dev/go-dining-bot/internal/subscription"
	"github.com/campus-dev/go-dining-bot/pkg"
)

const shutdownTimeout = 90 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	if cfg.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	timezone, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	tgClient, err := telegram.NewClient(cfg.TelegramBotToken, appLogger)
	if err != nil {
		return fmt.Errorf("creating Telegram client: %w", err)
	}

	setupTelegramCommands(tgClient, appLogger)

	store := subscription.NewStore(cfg.SubscriptionsFile, appLogger)
	locationClient := menu.NewLocationClient(cfg, appLogger)
	menuSource := menu.NewSource(cfg, locationClient, appLogger)

	chatStates := memory.NewChatStateRepository()

	botService := botservice.NewBotService(
		chatStates,
		menuSource,
		store,
		cfg.DiningHalls,
		cfg.DefaultMeal,
		timezone,
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		appLogger,
	)

	notifier := notify.NewDailyNotifier(
		store,
		menuSource,
		tgClient,
		cfg.DiningHalls,
		cfg.DefaultMeal,
		timezone,
		appLogger,
	)

	dailyScheduler := scheduler.NewScheduler(notifier, cfg.NotifyHour, cfg.NotifyMinute, timezone, appLogger)
	dailyScheduler.Start()

	poller := telegram.NewPoller(tgClient, botService, appLogger)
	poller.Start()

	metricsCtx, cancelMetrics := context.WithCancel(context.Background())
	defer cancelMetrics()

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(metricsCtx); err != nil {
			appLogger.Error("metrics server stopped unexpectedly", "error", err)
		}
	}()

	notifyOperator(tgClient, cfg.OperatorChatID, appLogger)

	appLogger.Info("dining hall menu bot started",
		"dining_halls", cfg.DiningHalls,
		"notify_at", fmt.Sprintf("%02d:%02d", cfg.NotifyHour, cfg.NotifyMinute),
		"timezone", cfg.Timezone,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	appLogger.Info("received shutdown signal", "signal", sig.String())

	poller.Stop()
	dailyScheduler.Stop()

	// Let an in-flight scrape finish rather than orphaning its browser
	// process; each session is bounded by its own timeout anyway.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := menuSource.Wait(shutdownCtx); err != nil {
		appLogger.Warn("shutdown proceeded with scrape sessions still in flight", "error", err)
	}

	if err := metricsServer.Stop(shutdownCtx); err != nil {
		appLogger.Error("error stopping metrics server", "error", err)
	}

	appLogger.Info("bot stopped")

	return nil
}

func setupTelegramCommands(tgClient *telegram.Client, appLogger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tgClient.SetCommands(ctx); err != nil {
		appLogger.Error("error registering bot commands", "error", err)
	} else {
		appLogger.Info("bot commands registered")
	}
}

func notifyOperator(tgClient *telegram.Client, operatorChatID int64, appLogger *slog.Logger) {
	if operatorChatID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tgClient.SendPlain(ctx, operatorChatID, "Dining hall menu bot is up."); err != nil {
		appLogger.Warn("could not notify operator", "error", err)
	}
}
