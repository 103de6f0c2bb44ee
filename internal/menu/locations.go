package menu

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/campus-dev/go-dining-bot/internal/common/httputil"
	"github.com/campus-dev/go-dining-bot/internal/config"
	domainerrors "github.com/campus-dev/go-dining-bot/internal/domain/errors"
)

// LocationClient reads the dining hall option set from the menu page. The
// location selector is server-rendered, so a plain GET is enough and the
// browser session is skipped entirely.
type LocationClient struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

func NewLocationClient(cfg *config.Config, logger *slog.Logger) *LocationClient {
	return &LocationClient{
		client:  httputil.CreateResilientHTTPClient(cfg, logger, "menu_site"),
		baseURL: cfg.MenuBaseURL,
		logger:  logger,
	}
}

func (c *LocationClient) ListLocations(ctx context.Context) ([]string, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL)
	if err != nil {
		return nil, &domainerrors.ErrSourceUnavailable{Reason: "menu page unreachable", Cause: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &domainerrors.ErrSourceUnavailable{
			Reason: "menu page unreachable",
			Cause:  &domainerrors.HTTPError{StatusCode: resp.StatusCode()},
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &domainerrors.ErrSourceUnavailable{Reason: "menu page markup unreadable", Cause: err}
	}

	locations, found := parseLocationOptions(doc)
	if !found {
		return nil, &domainerrors.ErrSourceUnavailable{Reason: "location selector is absent"}
	}

	c.logger.Debug("location options fetched", "count", len(locations))

	return locations, nil
}
