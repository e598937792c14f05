package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/radiusdt/vector-etl/internal/config"
	"github.com/radiusdt/vector-etl/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const insightsFields = "date_start,ad_id,ad_name,campaign_name,impressions,clicks,spend,actions,action_values"

// maxInsightsPages bounds cursor-following so a bad paging loop cannot
// run forever.
const maxInsightsPages = 50

// InsightsClient fetches ad-level performance from the Meta Graph
// insights API for a single calendar day. Outbound calls go through a
// token-bucket limiter so backfills stay inside the platform's rate
// budget.
type InsightsClient struct {
	httpClient *http.Client
	cfg        config.MetaConfig
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewInsightsClient creates a new Graph insights client.
func NewInsightsClient(cfg config.MetaConfig, logger *zap.Logger) *InsightsClient {
	return &InsightsClient{
		httpClient: &http.Client{},
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		logger:     logger,
	}
}

// FetchDay returns every ad-level record for one reporting day, following
// paging cursors until the feed is exhausted. A response without a data
// payload is a feed failure, not an empty day.
func (c *InsightsClient) FetchDay(ctx context.Context, date string) ([]models.InsightRow, error) {
	next := c.dayURL(date)

	var rows []models.InsightRow
	for page := 0; next != ""; page++ {
		if page >= maxInsightsPages {
			return nil, fmt.Errorf("insights paging exceeded %d pages for %s", maxInsightsPages, date)
		}

		resp, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}

		rows = append(rows, resp.Data...)

		next = ""
		if resp.Paging != nil {
			next = resp.Paging.Next
		}
	}

	c.logger.Debug("fetched insights",
		zap.String("date", date),
		zap.Int("rows", len(rows)),
	)

	return rows, nil
}

func (c *InsightsClient) fetchPage(ctx context.Context, pageURL string) (*models.InsightsResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build insights request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insights: %w", err)
	}
	defer httpResp.Body.Close()

	var resp models.InsightsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode insights response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("meta api error: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("meta api returned no data payload (status %d)", httpResp.StatusCode)
	}

	return &resp, nil
}

func (c *InsightsClient) dayURL(date string) string {
	q := url.Values{}
	q.Set("level", "ad")
	q.Set("fields", insightsFields)
	q.Set("time_range", fmt.Sprintf("{'since':'%s','until':'%s'}", date, date))
	q.Set("access_token", c.cfg.AccessToken)

	return fmt.Sprintf("%s/%s/%s/insights?%s",
		c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.AdAccountID, q.Encode())
}
