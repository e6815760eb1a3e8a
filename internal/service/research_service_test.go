package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/fallback"
	"github.com/yourorg/market-gateway/internal/model"
)

func testXAIConfig() config.XAIConfig {
	return config.XAIConfig{
		Model:       "grok-2-latest",
		Temperature: 0.7,
		Test:        config.CompletionConfig{MaxTokens: 100, Timeout: 10 * time.Second},
		News:        config.CompletionConfig{MaxTokens: 500, Timeout: 20 * time.Second},
		Research:    config.CompletionConfig{MaxTokens: 1000, Timeout: 30 * time.Second},
	}
}

func newResearchService(chat ChatCompleter, publisher EventPublisher) *ResearchService {
	return NewResearchService(chat, fallback.NewGenerator(1), testXAIConfig(), publisher, zap.NewNop())
}

func TestTestConnection(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		chat := &fakeChat{}
		_, err := newResearchService(chat, nil).TestConnection(t.Context())

		assert.ErrorIs(t, err, client.ErrNotConfigured)
		assert.Empty(t, chat.requests)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		chat := &fakeChat{configured: true, answer: "Stocks are mixed."}
		message, err := newResearchService(chat, nil).TestConnection(t.Context())

		require.NoError(t, err)
		assert.Equal(t, "Stocks are mixed.", message)
		require.Len(t, chat.requests, 1)
		assert.Equal(t, 100, chat.requests[0].MaxTokens)
		assert.Equal(t, 10*time.Second, chat.timeouts[0])
		assert.Equal(t, testSystemPrompt, chat.requests[0].Messages[0].Content)
		assert.Equal(t, testUserPrompt, chat.requests[0].Messages[1].Content)
	})

	t.Run("upstream failure", func(t *testing.T) {
		t.Parallel()

		chat := &fakeChat{configured: true, err: &client.StatusError{StatusCode: http.StatusUnauthorized}}
		_, err := newResearchService(chat, nil).TestConnection(t.Context())

		var statusErr *client.StatusError
		assert.ErrorAs(t, err, &statusErr)
	})
}

func TestNewsSummary_Live(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{configured: true, answer: "Here's a summary of the latest news for AAPL:\n\n**Earnings**\n- Beat\n\n\n\n**Products**\n- New phone\n"}

	resp := newResearchService(chat, nil).NewsSummary(t.Context(), "AAPL")

	assert.Equal(t, model.NewsSummaryResponse{
		Symbol:  "AAPL",
		Summary: "**Earnings**\n- Beat\n\n**Products**\n- New phone",
		Source:  model.SourceXAI,
	}, resp)

	require.Len(t, chat.requests, 1)
	request := chat.requests[0]
	assert.Equal(t, "grok-2-latest", request.Model)
	assert.InDelta(t, 0.7, request.Temperature, 1e-9)
	assert.Equal(t, 500, request.MaxTokens)
	assert.Equal(t, 20*time.Second, chat.timeouts[0])
	assert.Equal(t, "system", request.Messages[0].Role)
	assert.Equal(t, newsSystemPrompt, request.Messages[0].Content)
	assert.True(t, strings.HasPrefix(request.Messages[1].Content, "Give me a summary of the news today for AAPL."))
}

func TestNewsSummary_Degraded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		chat      *fakeChat
		wantError string
	}{
		{name: "no key", chat: &fakeChat{}, wantError: "X.AI API key is not configured"},
		{name: "bad status", chat: &fakeChat{configured: true, err: &client.StatusError{StatusCode: 503}}, wantError: "Error calling X.AI API: 503"},
		{name: "no choices", chat: &fakeChat{configured: true, err: fmt.Errorf("%w: no choices", client.ErrInvalidResponse)}, wantError: "Invalid API response format"},
		{name: "empty answer", chat: &fakeChat{configured: true, answer: "  "}, wantError: "Invalid API response format"},
		{name: "timeout", chat: &fakeChat{configured: true, err: fmt.Errorf("call: %w", context.DeadlineExceeded)}, wantError: "X.AI API request timed out"},
		{name: "transport", chat: &fakeChat{configured: true, err: errors.New("connection refused")}, wantError: "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publisher := &fakePublisher{}
			resp := newResearchService(tt.chat, publisher).NewsSummary(t.Context(), "TSLA")

			assert.Equal(t, "TSLA", resp.Symbol)
			assert.Equal(t, model.SourceMock, resp.Source)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Contains(t, resp.Summary, "**Financial Performance**")

			require.Len(t, publisher.events, 1)
			assert.Equal(t, "stock-news-summary", publisher.events[0].Endpoint)
			assert.Equal(t, tt.wantError, publisher.events[0].Reason)
		})
	}
}

func TestResearch_Live(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{configured: true, answer: "Consider index funds."}

	resp := newResearchService(chat, nil).Research(t.Context(), model.ResearchRequest{
		Message:    "How should I invest?",
		PromptType: string(model.PromptPortfolioAdvisor),
		Context:    &model.ResearchContext{Symbols: []string{"AAPL", "MSFT"}},
	})

	assert.Equal(t, model.ResearchResponse{Response: "Consider index funds.", Source: model.SourceXAI}, resp)
	require.Len(t, chat.requests, 1)
	assert.Equal(t, 1000, chat.requests[0].MaxTokens)
	assert.Equal(t, 30*time.Second, chat.timeouts[0])
	assert.Contains(t, chat.requests[0].Messages[0].Content, "User's portfolio: AAPL, MSFT.")
	assert.Equal(t, "How should I invest?", chat.requests[0].Messages[1].Content)
}

func TestResearch_UnknownPromptTypeUsesGeneralAdvisor(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{configured: true, answer: "ok"}

	newResearchService(chat, nil).Research(t.Context(), model.ResearchRequest{Message: "hi", PromptType: "SOMETHING_ELSE"})

	require.Len(t, chat.requests, 1)
	assert.Equal(t, generalAdvisorPrompt, chat.requests[0].Messages[0].Content)
}

func TestResearch_FallbackPerPersona(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{configured: true, err: &client.StatusError{StatusCode: http.StatusTooManyRequests}}

	resp := newResearchService(chat, nil).Research(t.Context(), model.ResearchRequest{
		Message:    "Where is my portfolio?",
		PromptType: string(model.PromptWebsiteHelp),
	})

	assert.Equal(t, model.SourceMock, resp.Source)
	assert.Equal(t, "Error calling X.AI API: 429", resp.Error)
	assert.True(t, strings.HasPrefix(resp.Response, "Here's how to navigate our platform:"))
	assert.True(t, strings.HasSuffix(resp.Response, fallback.MockNotice))
}

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		promptType model.PromptType
		rc         *model.ResearchContext
		contains   string
	}{
		{name: "symbol", promptType: model.PromptNewsSummary, rc: &model.ResearchContext{Symbol: "AMZN"}, contains: "news today for AMZN."},
		{name: "preferences", promptType: model.PromptStockRecommendations, rc: &model.ResearchContext{Preferences: "Risk Tolerance: low"}, contains: "preferences (Risk Tolerance: low)"},
		{name: "missing context keeps placeholder", promptType: model.PromptPortfolioAdvisor, contains: "{{symbols}}"},
		{name: "website help", promptType: model.PromptWebsiteHelp, rc: &model.ResearchContext{Symbol: "X"}, contains: "stock monitoring website"},
		{name: "unknown", promptType: model.PromptType("NOPE"), contains: "financial assistant on a stock monitor site"},
	}

	for _, tt := range tests {
		assert.Contains(t, SystemPrompt(tt.promptType, tt.rc), tt.contains, tt.name)
	}
}

func TestCleanNewsSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "here is intro", in: "Here is a summary of the news for NVDA:\n**Chips**\n- Demand", want: "**Chips**\n- Demand"},
		{name: "recent news intro", in: "recent news summary for NVDA.\n\n**Chips**", want: "**Chips**"},
		{name: "overview intro", in: "Overview of the latest NVDA news:\n**Chips**", want: "**Chips**"},
		{name: "other symbol untouched", in: "Here's a summary of the news for AMD:\n**Chips**", want: "Here's a summary of the news for AMD:\n**Chips**"},
		{name: "collapse newlines", in: "**A**\n\n\n\n\n**B**", want: "**A**\n\n**B**"},
		{name: "trim", in: "  \n**A**\n  ", want: "**A**"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanNewsSummary(tt.in, "NVDA"), tt.name)
	}
}
