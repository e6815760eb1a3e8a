package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/fallback"
	"github.com/yourorg/market-gateway/internal/model"

	"go.uber.org/zap"
)

// ChatCompleter is the chat-completion upstream
type ChatCompleter interface {
	Configured() bool
	CreateChatCompletion(ctx context.Context, request model.ChatCompletionRequest, timeout time.Duration) (string, error)
}

// ResearchService answers AI questions and falls back to canned text
type ResearchService struct {
	chat      ChatCompleter
	generator *fallback.Generator
	cfg       config.XAIConfig
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewResearchService creates a new research service. publisher may be nil.
func NewResearchService(
	chat ChatCompleter,
	generator *fallback.Generator,
	cfg config.XAIConfig,
	publisher EventPublisher,
	logger *zap.Logger,
) *ResearchService {
	return &ResearchService{
		chat:      chat,
		generator: generator,
		cfg:       cfg,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// TestConnection sends a short fixed prompt and returns the reply. It does
// not fall back.
func (s *ResearchService) TestConnection(ctx context.Context) (string, error) {
	if !s.chat.Configured() {
		return "", client.ErrNotConfigured
	}

	request := s.request(testSystemPrompt, testUserPrompt, s.cfg.Test.MaxTokens)
	message, err := s.chat.CreateChatCompletion(ctx, request, s.cfg.Test.Timeout)
	if err != nil {
		s.logger.Error("X.AI connectivity test failed", zap.Error(err))
		return "", err
	}
	return message, nil
}

// NewsSummary summarizes today's news for symbol. Failures are reported in
// the response rather than as an error.
func (s *ResearchService) NewsSummary(ctx context.Context, symbol string) model.NewsSummaryResponse {
	userPrompt := strings.ReplaceAll(newsUserPrompt, "{{symbol}}", symbol)
	request := s.request(newsSystemPrompt, userPrompt, s.cfg.News.MaxTokens)

	summary, err := s.complete(ctx, request, s.cfg.News.Timeout)
	if err != nil {
		s.recordFallback(ctx, "stock-news-summary", symbol, err)
		return model.NewsSummaryResponse{
			Symbol:  symbol,
			Summary: s.generator.NewsSummary(symbol),
			Source:  model.SourceMock,
			Error:   describeAIError(err),
		}
	}

	return model.NewsSummaryResponse{
		Symbol:  symbol,
		Summary: CleanNewsSummary(summary, symbol),
		Source:  model.SourceXAI,
	}
}

// Research answers a free-form question with the requested persona. Failures
// are reported in the response rather than as an error.
func (s *ResearchService) Research(ctx context.Context, req model.ResearchRequest) model.ResearchResponse {
	promptType := model.ParsePromptType(req.PromptType)
	request := s.request(SystemPrompt(promptType, req.Context), req.Message, s.cfg.Research.MaxTokens)

	answer, err := s.complete(ctx, request, s.cfg.Research.Timeout)
	if err != nil {
		symbol := ""
		if req.Context != nil {
			symbol = req.Context.Symbol
		}
		s.recordFallback(ctx, "research", symbol, err)
		return model.ResearchResponse{
			Response: s.generator.ResearchResponse(promptType, req.Context),
			Source:   model.SourceMock,
			Error:    describeAIError(err),
		}
	}

	return model.ResearchResponse{
		Response: answer,
		Source:   model.SourceXAI,
	}
}

func (s *ResearchService) request(system, user string, maxTokens int) model.ChatCompletionRequest {
	return model.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []model.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   maxTokens,
	}
}

func (s *ResearchService) complete(ctx context.Context, request model.ChatCompletionRequest, timeout time.Duration) (string, error) {
	if !s.chat.Configured() {
		return "", client.ErrNotConfigured
	}

	answer, err := s.chat.CreateChatCompletion(ctx, request, timeout)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: empty message", client.ErrInvalidResponse)
	}
	return answer, nil
}

func (s *ResearchService) recordFallback(ctx context.Context, endpoint, symbol string, cause error) {
	s.logger.Warn("Using mock AI response",
		zap.String("endpoint", endpoint),
		zap.String("symbol", symbol),
		zap.Error(cause))

	if s.publisher == nil {
		return
	}
	event := model.FallbackEvent{
		Endpoint:  endpoint,
		Symbol:    symbol,
		Reason:    describeAIError(cause),
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.PublishFallback(ctx, event); err != nil {
		s.logger.Warn("Failed to publish fallback event", zap.Error(err))
	}
}

// describeAIError turns an upstream failure into the text clients see in the
// error field of a degraded response.
func describeAIError(err error) string {
	var statusErr *client.StatusError
	switch {
	case errors.Is(err, client.ErrNotConfigured):
		return "X.AI API key is not configured"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error calling X.AI API: %d", statusErr.StatusCode)
	case errors.Is(err, client.ErrInvalidResponse):
		return "Invalid API response format"
	case client.IsTimeout(err):
		return "X.AI API request timed out"
	default:
		return err.Error()
	}
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// CleanNewsSummary strips a leading "Here's a summary of the news for X:"
// style introduction and collapses runs of blank lines.
func CleanNewsSummary(summary, symbol string) string {
	sym := regexp.QuoteMeta(symbol)
	intros := []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Here(?:'s| is) a summary of (?:the )?(?:latest |recent )?news for ` + sym + `[:.]\n*`),
		regexp.MustCompile(`(?i)^(?:Latest|Recent) news (?:summary )?for ` + sym + `[:.]\n*`),
		regexp.MustCompile(`(?i)^(?:Summary|Overview) of (?:the )?(?:latest |recent )?` + sym + ` news[:.]\n*`),
	}

	cleaned := strings.TrimSpace(summary)
	for _, intro := range intros {
		cleaned = intro.ReplaceAllString(cleaned, "")
	}
	cleaned = excessNewlines.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
