package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/model"

	"go.uber.org/zap"
)

// XAIClient handles communication with the X.AI chat completion API
type XAIClient struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	logger     *zap.Logger
}

// XAIOption is a configuration option for the X.AI client
type XAIOption func(*XAIClient)

// WithXAIHTTPClient sets the HTTP client used for upstream calls
func WithXAIHTTPClient(httpClient HTTPClient) XAIOption {
	return func(c *XAIClient) {
		c.httpClient = httpClient
	}
}

// NewXAIClient creates a new X.AI API client
func NewXAIClient(cfg config.XAIConfig, logger *zap.Logger, options ...XAIOption) *XAIClient {
	c := &XAIClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: NewHTTPClient(),
		logger:     logger,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Configured reports whether an API key is available
func (c *XAIClient) Configured() bool {
	return c.apiKey != ""
}

// CreateChatCompletion sends one chat completion request and returns the
// content of the first choice.
func (c *XAIClient) CreateChatCompletion(ctx context.Context, request model.ChatCompletionRequest, timeout time.Duration) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payloadBytes, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("Calling X.AI API",
		zap.String("model", request.Model),
		zap.Int("maxTokens", request.MaxTokens))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to call X.AI API", zap.Error(err))
		return "", fmt.Errorf("failed to call chat completion: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("X.AI API response", zap.Int("statusCode", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("X.AI API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var completion model.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		c.logger.Error("Failed to decode X.AI response", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(completion.Choices) == 0 {
		c.logger.Warn("X.AI response has no choices")
		return "", fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	return completion.Choices[0].Message.Content, nil
}

// IsTimeout reports whether err came from an expired deadline
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
