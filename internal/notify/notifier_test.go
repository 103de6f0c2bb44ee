package notify_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campus-dev/go-dining-bot/internal/domain/models"
	"github.com/campus-dev/go-dining-bot/internal/notify"
)

type mockSubscriberStore struct {
	mock.Mock
}

func (m *mockSubscriberStore) Load(ctx context.Context) (map[int64]bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

type mockMenuSource struct {
	mock.Mock
}

func (m *mockMenuSource) FetchMenu(ctx context.Context, location, date, meal string) (*models.Menu, error) {
	args := m.Called(ctx, location, date, meal)

	menu, _ := args.Get(0).(*models.Menu)

	return menu, args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendMarkdown(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func testLoggerForNotifier() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func menuFor(location string) *models.Menu {
	m := models.NewMenu(location, models.FormatMenuDate(time.Now().UTC()), "Lunch")
	m.Add(models.MenuItem{Name: "Pizza"})

	return m
}

func TestDailyNotifier_DeliveryFailureDoesNotStopTheCycle(t *testing.T) {
	store := new(mockSubscriberStore)
	source := new(mockMenuSource)
	sender := new(mockSender)

	store.On("Load", mock.Anything).Return(map[int64]bool{1: true, 2: true, 3: true}, nil)
	source.On("FetchMenu", mock.Anything, "Stern Dining", mock.Anything, "Lunch").
		Return(menuFor("Stern Dining"), nil)

	sender.On("SendMarkdown", mock.Anything, int64(1), mock.Anything).Return(nil).Once()
	sender.On("SendMarkdown", mock.Anything, int64(2), mock.Anything).Return(assert.AnError).Once()
	sender.On("SendMarkdown", mock.Anything, int64(3), mock.Anything).Return(nil).Once()

	notifier := notify.NewDailyNotifier(store, source, sender,
		[]string{"Stern Dining"}, "Lunch", time.UTC, testLoggerForNotifier())

	err := notifier.NotifyAll(context.Background())

	require.Error(t, err, "the aggregate reports the failed pair")
	sender.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestDailyNotifier_FetchesEachLocationOncePerCycle(t *testing.T) {
	store := new(mockSubscriberStore)
	source := new(mockMenuSource)
	sender := new(mockSender)

	store.On("Load", mock.Anything).Return(map[int64]bool{1: true, 2: true}, nil)
	source.On("FetchMenu", mock.Anything, "Stern Dining", mock.Anything, "Lunch").
		Return(menuFor("Stern Dining"), nil).Once()
	source.On("FetchMenu", mock.Anything, "Wilbur Dining", mock.Anything, "Lunch").
		Return(menuFor("Wilbur Dining"), nil).Once()
	sender.On("SendMarkdown", mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(4)

	notifier := notify.NewDailyNotifier(store, source, sender,
		[]string{"Stern Dining", "Wilbur Dining"}, "Lunch", time.UTC, testLoggerForNotifier())

	err := notifier.NotifyAll(context.Background())

	require.NoError(t, err)
	source.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestDailyNotifier_FailedLocationIsSkippedForAllSubscribers(t *testing.T) {
	store := new(mockSubscriberStore)
	source := new(mockMenuSource)
	sender := new(mockSender)

	store.On("Load", mock.Anything).Return(map[int64]bool{1: true}, nil)
	source.On("FetchMenu", mock.Anything, "Stern Dining", mock.Anything, "Lunch").
		Return(nil, assert.AnError).Once()
	source.On("FetchMenu", mock.Anything, "Wilbur Dining", mock.Anything, "Lunch").
		Return(menuFor("Wilbur Dining"), nil).Once()
	sender.On("SendMarkdown", mock.Anything, int64(1), mock.Anything).Return(nil).Once()

	notifier := notify.NewDailyNotifier(store, source, sender,
		[]string{"Stern Dining", "Wilbur Dining"}, "Lunch", time.UTC, testLoggerForNotifier())

	err := notifier.NotifyAll(context.Background())

	require.Error(t, err)
	sender.AssertExpectations(t)
	source.AssertExpectations(t)
}

func TestDailyNotifier_NoSubscribersSkipsScraping(t *testing.T) {
	store := new(mockSubscriberStore)
	source := new(mockMenuSource)
	sender := new(mockSender)

	store.On("Load", mock.Anything).Return(map[int64]bool{}, nil)

	notifier := notify.NewDailyNotifier(store, source, sender,
		[]string{"Stern Dining"}, "Lunch", time.UTC, testLoggerForNotifier())

	err := notifier.NotifyAll(context.Background())

	require.NoError(t, err)
	source.AssertNotCalled(t, "FetchMenu", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDailyNotifier_EmptyMenuIsStillDelivered(t *testing.T) {
	store := new(mockSubscriberStore)
	source := new(mockMenuSource)
	sender := new(mockSender)

	empty := models.NewMenu("Stern Dining", models.FormatMenuDate(time.Now().UTC()), "Lunch")

	store.On("Load", mock.Anything).Return(map[int64]bool{1: true}, nil)
	source.On("FetchMenu", mock.Anything, "Stern Dining", mock.Anything, "Lunch").Return(empty, nil).Once()
	sender.On("SendMarkdown", mock.Anything, int64(1), mock.MatchedBy(func(text string) bool {
		return text == notify.FormatMenu(empty)
	})).Return(nil).Once()

	notifier := notify.NewDailyNotifier(store, source, sender,
		[]string{"Stern Dining"}, "Lunch", time.UTC, testLoggerForNotifier())

	err := notifier.NotifyAll(context.Background())

	require.NoError(t, err)
	sender.AssertExpectations(t)
}
