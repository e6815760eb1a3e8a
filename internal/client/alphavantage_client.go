package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/utils"

	"go.uber.org/zap"
)

const (
	functionGlobalQuote = "GLOBAL_QUOTE"
	functionOverview    = "OVERVIEW"

	globalQuoteKey = "Global Quote"

	// OutputSizeCompact returns the latest 100 data points
	OutputSizeCompact = "compact"
	// OutputSizeFull returns the full-length series
	OutputSizeFull = "full"

	maxErrorBody = 2048
)

// AlphaVantageClient handles communication with the Alpha Vantage quotes API
type AlphaVantageClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient HTTPClient
	logger     *zap.Logger
}

// AlphaVantageOption is a configuration option for the Alpha Vantage client
type AlphaVantageOption func(*AlphaVantageClient)

// WithAlphaVantageHTTPClient sets the HTTP client used for upstream calls
func WithAlphaVantageHTTPClient(httpClient HTTPClient) AlphaVantageOption {
	return func(c *AlphaVantageClient) {
		c.httpClient = httpClient
	}
}

// NewAlphaVantageClient creates a new Alpha Vantage API client
func NewAlphaVantageClient(cfg config.AlphaVantageConfig, logger *zap.Logger, options ...AlphaVantageOption) *AlphaVantageClient {
	c := &AlphaVantageClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: NewHTTPClient(),
		logger:     logger,
	}
	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// SeriesSelector returns the upstream function and response key for an interval
func SeriesSelector(interval model.Interval) (function, key string) {
	switch interval {
	case model.IntervalWeekly:
		return "TIME_SERIES_WEEKLY", "Weekly Time Series"
	case model.IntervalMonthly:
		return "TIME_SERIES_MONTHLY", "Monthly Time Series"
	default:
		return "TIME_SERIES_DAILY", "Time Series (Daily)"
	}
}

// GetGlobalQuote retrieves the latest quote fields for a symbol
func (c *AlphaVantageClient) GetGlobalQuote(ctx context.Context, symbol string) (model.RawPayload, error) {
	params := url.Values{}
	params.Set("function", functionGlobalQuote)
	params.Set("symbol", symbol)

	payload, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	quote, ok := payload[globalQuoteKey].(map[string]any)
	if !ok || len(quote) == 0 {
		return nil, c.classify(payload, functionGlobalQuote, symbol)
	}

	return quote, nil
}

// GetCompanyOverview retrieves fundamentals such as the company name and market cap
func (c *AlphaVantageClient) GetCompanyOverview(ctx context.Context, symbol string) (model.RawPayload, error) {
	params := url.Values{}
	params.Set("function", functionOverview)
	params.Set("symbol", symbol)

	payload, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	if _, ok := payload["Name"]; !ok {
		return nil, c.classify(payload, functionOverview, symbol)
	}

	return payload, nil
}

// GetTimeSeries retrieves the raw bars of a series keyed by calendar date
func (c *AlphaVantageClient) GetTimeSeries(ctx context.Context, symbol string, interval model.Interval, outputSize string) (map[string]model.RawPayload, error) {
	function, key := SeriesSelector(interval)

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("outputsize", outputSize)

	payload, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	rawSeries, ok := payload[key].(map[string]any)
	if !ok || len(rawSeries) == 0 {
		return nil, c.classify(payload, function, symbol)
	}

	series := make(map[string]model.RawPayload, len(rawSeries))
	for date, raw := range rawSeries {
		// A bar that is not an object keeps its date and coerces to zeros
		values, _ := raw.(map[string]any)
		series[date] = values
	}

	c.logger.Debug("Fetched time series",
		zap.String("symbol", symbol),
		zap.String("function", function),
		zap.Int("bars", len(series)))

	return series, nil
}

// query performs one GET against the API and decodes the JSON object body
func (c *AlphaVantageClient) query(ctx context.Context, params url.Values) (model.RawPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	function := params.Get("function")
	symbol := params.Get("symbol")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("Calling Alpha Vantage API",
		zap.String("function", function),
		zap.String("symbol", symbol))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to call Alpha Vantage API",
			zap.Error(err),
			zap.String("function", function),
			zap.String("symbol", symbol))
		return nil, fmt.Errorf("failed to fetch %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Alpha Vantage API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("function", function),
			zap.String("response", string(bodyBytes)))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var payload model.RawPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Error("Failed to decode Alpha Vantage response",
			zap.Error(err),
			zap.String("function", function),
			zap.String("symbol", symbol))
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return payload, nil
}

// classify explains why a payload lacks the expected data
func (c *AlphaVantageClient) classify(payload model.RawPayload, function, symbol string) error {
	if msg := utils.String(payload["Error Message"], ""); msg != "" {
		c.logger.Warn("Alpha Vantage API error",
			zap.String("function", function),
			zap.String("symbol", symbol),
			zap.String("message", msg))
		return &messageError{kind: ErrUpstreamError, message: msg}
	}

	for _, key := range []string{"Information", "Note"} {
		if msg := utils.String(payload[key], ""); msg != "" {
			c.logger.Warn("Alpha Vantage API limit",
				zap.String("function", function),
				zap.String("symbol", symbol),
				zap.String("message", msg))
			return &messageError{kind: ErrRateLimited, message: msg}
		}
	}

	c.logger.Warn("Unknown Alpha Vantage response format",
		zap.String("function", function),
		zap.String("symbol", symbol),
		zap.Int("keys", len(payload)))
	return fmt.Errorf("%w: %s for %s", ErrNoData, function, symbol)
}
