package menu_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dev/go-dining-bot/internal/config"
	domainerrors "github.com/campus-dev/go-dining-bot/internal/domain/errors"
	"github.com/campus-dev/go-dining-bot/internal/menu"
)

func newTestConfig(baseURL string) *config.Config {
	return &config.Config{
		MenuBaseURL:                baseURL,
		ExternalRequestTimeout:     2 * time.Second,
		RetryCount:                 0,
		RetryBackoff:               10 * time.Millisecond,
		CBSlidingWindowSize:        10,
		CBMinimumRequiredCalls:     100,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 1,
		CBWaitDurationInOpenState:  time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLocationClient_ListLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<select id="MainContent_lstLocations">
				<option>Select Location</option>
				<option>Stern Dining</option>
				<option>Wilbur Dining</option>
			</select>
		</body></html>`))
	}))
	defer server.Close()

	client := menu.NewLocationClient(newTestConfig(server.URL), testLogger())

	locations, err := client.ListLocations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Stern Dining", "Wilbur Dining"}, locations)
}

func TestLocationClient_SelectorAbsentIsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>maintenance</p></body></html>`))
	}))
	defer server.Close()

	client := menu.NewLocationClient(newTestConfig(server.URL), testLogger())

	_, err := client.ListLocations(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, &domainerrors.ErrSourceUnavailable{}))
}

func TestLocationClient_ServerErrorIsSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := menu.NewLocationClient(newTestConfig(server.URL), testLogger())

	_, err := client.ListLocations(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, &domainerrors.ErrSourceUnavailable{}))
}
