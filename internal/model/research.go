package model

// Source tags for AI responses
const (
	SourceXAI  = "xai"
	SourceMock = "mock"
)

// PromptType selects the assistant persona
type PromptType string

const (
	PromptGeneralAdvisor       PromptType = "GENERAL_ADVISOR"
	PromptPortfolioAdvisor     PromptType = "PORTFOLIO_ADVISOR"
	PromptNewsSummary          PromptType = "NEWS_SUMMARY"
	PromptWebsiteHelp          PromptType = "WEBSITE_HELP"
	PromptStockRecommendations PromptType = "STOCK_RECOMMENDATIONS"
)

// ParsePromptType returns the persona for s, defaulting to the general advisor
func ParsePromptType(s string) PromptType {
	switch p := PromptType(s); p {
	case PromptGeneralAdvisor, PromptPortfolioAdvisor, PromptNewsSummary,
		PromptWebsiteHelp, PromptStockRecommendations:
		return p
	default:
		return PromptGeneralAdvisor
	}
}

// ResearchContext carries optional values substituted into persona prompts
type ResearchContext struct {
	Symbol      string   `json:"symbol,omitempty"`
	Symbols     []string `json:"symbols,omitempty"`
	Preferences string   `json:"preferences,omitempty"`
}

// ResearchRequest is the body of POST /api/research
type ResearchRequest struct {
	Message    string           `json:"message" binding:"required"`
	PromptType string           `json:"promptType"`
	Context    *ResearchContext `json:"context"`
}

// ResearchResponse is the answer of the research assistant
type ResearchResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
	Error    string `json:"error,omitempty"`
}

// NewsSummaryResponse is the answer of /api/stock-news-summary
type NewsSummaryResponse struct {
	Symbol  string `json:"symbol"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
	Error   string `json:"error,omitempty"`
}

// ChatMessage is one role-tagged message of a chat completion
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request template sent to the chat upstream
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatCompletionResponse is the subset of the chat upstream response we read
type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}
