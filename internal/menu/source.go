package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/campus-dev/go-dining-bot/internal/common/metrics"
	"github.com/campus-dev/go-dining-bot/internal/config"
	domainerrors "github.com/campus-dev/go-dining-bot/internal/domain/errors"
	"github.com/campus-dev/go-dining-bot/internal/domain/models"
)

// selectOptionJS selects a dropdown option by its visible text and fires the
// change event so the WebForms postback re-renders the page.
const selectOptionJS = `(() => {
	const sel = document.getElementById(%q);
	if (!sel) { return "missing"; }
	const opt = Array.from(sel.options).find(o => o.text.trim() === %q);
	if (!opt) { return "notfound"; }
	sel.value = opt.value;
	sel.dispatchEvent(new Event('change', { bubbles: true }));
	return "ok";
})()`

const menuRenderedJS = `document.querySelectorAll("div.clsMenuItem").length > 0`

// Source fetches menus by driving a headless browser session per call.
// Sessions are fully self-contained (own browser process, own teardown);
// the sessions channel caps how many run at once.
type Source struct {
	baseURL      string
	timeout      time.Duration
	renderWait   time.Duration
	pollInterval time.Duration
	headless     bool
	sessions     chan struct{}
	inflight     sync.WaitGroup
	locations    *LocationClient
	logger       *slog.Logger
}

func NewSource(cfg *config.Config, locations *LocationClient, logger *slog.Logger) *Source {
	maxSessions := cfg.MaxBrowserSessions
	if maxSessions < 1 {
		maxSessions = 1
	}

	return &Source{
		baseURL:      cfg.MenuBaseURL,
		timeout:      cfg.ScrapeTimeout,
		renderWait:   cfg.RenderTimeout,
		pollInterval: cfg.RenderPollInterval,
		headless:     cfg.ChromeHeadless,
		sessions:     make(chan struct{}, maxSessions),
		locations:    locations,
		logger:       logger,
	}
}

// FetchMenu loads the menu page in a fresh browser session, selects location,
// date and meal by exact visible text and parses the rendered item blocks.
// Expect seconds of latency per call.
func (s *Source) FetchMenu(ctx context.Context, location, date, meal string) (*models.Menu, error) {
	select {
	case s.sessions <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.inflight.Add(1)

	defer func() {
		<-s.sessions
		s.inflight.Done()
	}()

	s.logger.Info("fetching menu",
		"location", location,
		"date", date,
		"meal", meal,
	)

	start := time.Now()

	m, err := s.fetch(ctx, location, date, meal)

	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.RecordMenuScrape(status, time.Since(start).Seconds())

	return m, err
}

// ListLocations extracts the option set of the location selector. The options
// are server-rendered in the initial HTML, so this goes through the plain
// HTTP client instead of a browser session.
func (s *Source) ListLocations(ctx context.Context) ([]string, error) {
	return s.locations.ListLocations(ctx)
}

// Wait blocks until in-flight browser sessions finish or ctx expires. Used on
// shutdown so browser processes are not orphaned mid-scrape.
func (s *Source) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Source) fetch(ctx context.Context, location, date, meal string) (*models.Menu, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	if !s.headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.timeout)
	defer cancelRun()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(s.baseURL),
		chromedp.WaitVisible(locationSelectID, chromedp.ByID),
	); err != nil {
		return nil, &domainerrors.ErrSourceUnavailable{Reason: "menu page did not load", Cause: err}
	}

	selections := []struct {
		id    string
		field string
		value string
	}{
		{locationSelectID, "location", location},
		{daySelectID, "date", date},
		{mealSelectID, "meal", meal},
	}

	for _, sel := range selections {
		if err := s.selectByVisibleText(runCtx, sel.id, sel.field, sel.value); err != nil {
			return nil, err
		}
	}

	s.waitForItemBlocks(runCtx)

	var page string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &page, chromedp.ByQuery)); err != nil {
		return nil, &domainerrors.ErrSourceUnavailable{Reason: "could not read rendered page", Cause: err}
	}

	m, err := ParseMenu(strings.NewReader(page), location, date, meal)
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu fetched",
		"location", location,
		"items", m.Len(),
	)

	return m, nil
}

func (s *Source) selectByVisibleText(ctx context.Context, selectID, field, text string) error {
	// Each postback re-renders the form, so wait for the control to come back
	// before touching it.
	if err := chromedp.Run(ctx, chromedp.WaitVisible(selectID, chromedp.ByID)); err != nil {
		return &domainerrors.ErrSourceUnavailable{
			Reason: fmt.Sprintf("form control #%s is absent", selectID),
			Cause:  err,
		}
	}

	var result string

	js := fmt.Sprintf(selectOptionJS, selectID, text)
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &result)); err != nil {
		return &domainerrors.ErrSourceUnavailable{
			Reason: fmt.Sprintf("selecting %s failed", field),
			Cause:  err,
		}
	}

	switch result {
	case "ok":
		return nil
	case "notfound":
		// The site only exposes a short rolling window of dates; requests
		// outside it land here.
		return &domainerrors.ErrSelectionNotFound{Field: field, Value: text}
	default:
		return &domainerrors.ErrSourceUnavailable{
			Reason: fmt.Sprintf("form control #%s is absent", selectID),
		}
	}
}

// waitForItemBlocks polls for the first rendered item block instead of
// sleeping a fixed delay. Timing out is not failure: the selected slot may
// have no items, which the parser reports as an empty menu.
func (s *Source) waitForItemBlocks(ctx context.Context) {
	var rendered bool

	err := chromedp.Run(ctx, chromedp.Poll(menuRenderedJS, &rendered,
		chromedp.WithPollingInterval(s.pollInterval),
		chromedp.WithPollingTimeout(s.renderWait),
	))
	if err != nil && !errors.Is(err, chromedp.ErrPollingTimeout) {
		s.logger.Warn("polling for menu item blocks failed", "error", err)
	}
}
