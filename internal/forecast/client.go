// Package forecast is the HTTP client for the external forecast engine. The
// ledger core never computes forecasts; it only records and grades them.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	platformhttp "github.com/reservewatch/ledger/internal/platform/http"
	"github.com/reservewatch/ledger/models"
)

// Client talks to the forecast engine API. It implements
// models.ForecastEngine.
type Client struct {
	http    *platformhttp.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

// NewClient creates a forecast engine client. Retries and rate limiting are
// handled here, at the network-facing layer; the ledger core stays retry-free.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:        timeout,
			RequestsPerSec: 5,
		}),
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log.With().Str("component", "forecast_client").Logger(),
	}
}

// CurrentForecast fetches the tenant's live forecast with any intervention
// deltas the engine attached.
func (c *Client) CurrentForecast(ctx context.Context, tenantID string) (*models.CurrentForecast, error) {
	url := fmt.Sprintf("%s/v1/tenants/%s/forecast", c.baseURL, tenantID)

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("forecast fetch for %s: %w", tenantID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var fc models.CurrentForecast
	if err := json.Unmarshal(body, &fc); err != nil {
		c.logger.Error().Err(err).Str("tenant", tenantID).Msg("Error parsing forecast JSON")
		return nil, fmt.Errorf("parsing forecast: %w", err)
	}

	c.logger.Debug().Str("tenant", tenantID).Str("model", fc.Artifact.ModelVersion).Msg("Fetched current forecast")
	return &fc, nil
}
