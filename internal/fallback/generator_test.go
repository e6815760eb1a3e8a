package fallback

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/market-gateway/internal/model"
)

func fixedClock() time.Time {
	// A Wednesday
	return time.Date(2024, time.May, 15, 14, 30, 0, 0, time.UTC)
}

func TestQuote_Ranges(t *testing.T) {
	t.Parallel()

	g := NewGenerator(42)

	for range 200 {
		q := g.Quote("AAPL")

		assert.Equal(t, "AAPL", q.Symbol)
		assert.Equal(t, "AAPL Inc.", q.ShortName)
		assert.GreaterOrEqual(t, q.RegularMarketPrice, 100.0)
		assert.Less(t, q.RegularMarketPrice, 500.0)
		assert.GreaterOrEqual(t, q.RegularMarketChange, -20.0)
		assert.Less(t, q.RegularMarketChange, 20.0)
		assert.InDelta(t, q.RegularMarketChange/q.RegularMarketPrice*100, q.RegularMarketChangePercent, 1e-9)
		assert.GreaterOrEqual(t, q.RegularMarketVolume, 1e6)
		assert.LessOrEqual(t, q.RegularMarketVolume, 1e7)
		assert.GreaterOrEqual(t, q.RegularMarketDayHigh, q.RegularMarketPrice)
		assert.LessOrEqual(t, q.RegularMarketDayLow, q.RegularMarketPrice)
		assert.InDelta(t, q.RegularMarketPrice-q.RegularMarketChange, q.RegularMarketPreviousClose, 1e-9)
		assert.Positive(t, q.MarketCap)
	}
}

func TestQuote_SeedIsDeterministic(t *testing.T) {
	t.Parallel()

	a := NewGenerator(7).Quote("MSFT")
	b := NewGenerator(7).Quote("MSFT")

	assert.Equal(t, a, b)
}

func TestHistorical_WeekdaysNewestFirst(t *testing.T) {
	t.Parallel()

	g := NewGenerator(1, WithClock(fixedClock))

	bars := g.Historical("IBM", 30)

	require.NotEmpty(t, bars)
	assert.LessOrEqual(t, len(bars), 30)
	assert.Equal(t, "2024-05-15", bars[0].Date)

	for i, bar := range bars {
		day, err := time.Parse(model.DateLayout, bar.Date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())

		assert.GreaterOrEqual(t, bar.Close, 10.0)
		assert.GreaterOrEqual(t, bar.High, bar.Close)
		assert.GreaterOrEqual(t, bar.High, bar.Open)
		assert.LessOrEqual(t, bar.Low, bar.Close)
		assert.LessOrEqual(t, bar.Low, bar.Open)
		assert.GreaterOrEqual(t, bar.Volume, 1e6)

		if i > 0 {
			assert.Less(t, bar.Date, bars[i-1].Date, "dates must be strictly descending")
		}
	}
}

func TestHistorical_WindowLength(t *testing.T) {
	t.Parallel()

	g := NewGenerator(3, WithClock(fixedClock))

	// 2024-05-15 minus 365 days is 2023-05-16, a Tuesday
	bars := g.Historical("IBM", 365)

	assert.Equal(t, "2023-05-16", bars[len(bars)-1].Date)
	assert.Len(t, bars, 262)
}

func TestNewsSummary(t *testing.T) {
	t.Parallel()

	summary := NewGenerator(5).NewsSummary("TSLA")

	assert.True(t, strings.HasPrefix(summary, "**Product Announcements and Updates**"))
	assert.Contains(t, summary, "**Financial Performance**")
	assert.Contains(t, summary, "**Market Position and Competition**")
	assert.Contains(t, summary, "TSLA recently unveiled")
	assert.True(t, strings.HasSuffix(summary, "*Note: This is a simulated news summary based on known information about TSLA.*"))
}

func TestResearchResponse(t *testing.T) {
	t.Parallel()

	g := NewGenerator(9)

	tests := []struct {
		name       string
		promptType model.PromptType
		rc         *model.ResearchContext
		want       string
	}{
		{name: "general", promptType: model.PromptGeneralAdvisor, want: "Based on current market conditions:"},
		{name: "portfolio", promptType: model.PromptPortfolioAdvisor, rc: &model.ResearchContext{Symbols: []string{"AAPL", "MSFT"}}, want: "Based on your portfolio (AAPL, MSFT)"},
		{name: "portfolio without symbols", promptType: model.PromptPortfolioAdvisor, want: "Based on current market conditions:"},
		{name: "news", promptType: model.PromptNewsSummary, rc: &model.ResearchContext{Symbol: "NVDA"}, want: "NVDA recently unveiled"},
		{name: "website help", promptType: model.PromptWebsiteHelp, want: "Here's how to navigate our platform:"},
		{name: "recommendations", promptType: model.PromptStockRecommendations, want: "not financial advice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := g.ResearchResponse(tt.promptType, tt.rc)

			assert.Contains(t, got, tt.want)
			assert.True(t, strings.HasSuffix(got, MockNotice))
			assert.NotContains(t, got, "simulated news summary")
		})
	}
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	t.Parallel()

	g := NewGenerator(11)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = g.Quote("SPY")
				_ = g.Historical("SPY", 30)
			}
		}()
	}
	wg.Wait()
}
