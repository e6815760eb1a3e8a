package fallback

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/utils"
)

// MockNotice is appended to every synthetic research answer
const MockNotice = "\n\n---\n*Note: This is a mock response. To get real AI-powered responses, please configure your API key in the .env file.*"

const (
	minPrice   = 100.0
	maxPrice   = 500.0
	minVolume  = 1_000_000
	maxVolume  = 10_000_000
	priceWalk  = 5.0
	priceFloor = 10.0
)

// Generator produces structurally valid synthetic market data and text.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// Option is a configuration option for the generator
type Option func(*Generator)

// WithClock overrides the time source used for historical dates
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a generator. A zero seed draws a random one.
func NewGenerator(seed uint64, options ...Option) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	g := &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// intn returns an integer in [lo, hi]
func (g *Generator) intn(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) coin() bool {
	return g.rng.Float64() > 0.5
}

// Quote returns a synthetic quote for symbol
func (g *Generator) Quote(symbol string) model.Quote {
	g.mu.Lock()
	defer g.mu.Unlock()

	price := g.uniform(minPrice, maxPrice)
	change := g.uniform(-20, 20)

	return model.Quote{
		Symbol:                     symbol,
		ShortName:                  symbol + " Inc.",
		RegularMarketPrice:         price,
		RegularMarketChange:        change,
		RegularMarketChangePercent: change / price * 100,
		RegularMarketVolume:        float64(g.intn(minVolume, maxVolume)),
		MarketCap:                  price * float64(g.intn(10_000_000, 1_000_000_000)),
		RegularMarketOpen:          price - g.uniform(-10, 10),
		RegularMarketDayHigh:       price + g.uniform(0, 10),
		RegularMarketDayLow:        price - g.uniform(0, 10),
		RegularMarketPreviousClose: price - change,
	}
}

// Historical returns synthetic weekday bars covering the last days calendar
// days, newest first.
func (g *Generator) Historical(symbol string, days int) []model.HistoricalBar {
	g.mu.Lock()
	defer g.mu.Unlock()

	end := g.now()
	start := end.AddDate(0, 0, -days)
	price := g.uniform(minPrice, maxPrice)

	bars := make([]model.HistoricalBar, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		price = max(price+g.uniform(-priceWalk, priceWalk), priceFloor)
		open := price - g.uniform(-2, 2)
		high := max(price, open) + g.uniform(0, 3)
		low := min(price, open) - g.uniform(0, 3)

		bars = append(bars, model.HistoricalBar{
			Date:   day.Format(model.DateLayout),
			Open:   utils.Round2(open),
			High:   utils.Round2(high),
			Low:    utils.Round2(low),
			Close:  utils.Round2(price),
			Volume: float64(g.intn(minVolume, maxVolume)),
		})
	}

	slices.Reverse(bars)
	return bars
}

// NewsSummary returns a templated news summary for symbol
func (g *Generator) NewsSummary(symbol string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	pick := func(a, b string) string {
		if g.coin() {
			return a
		}
		return b
	}

	var sb strings.Builder
	sb.WriteString("**Product Announcements and Updates**\n")
	fmt.Fprintf(&sb, "- %s recently unveiled its next-generation product line with enhanced features\n", symbol)
	sb.WriteString("- The company's software platform received a major update focusing on security and performance\n")
	sb.WriteString("- New partnerships with key industry players were announced to expand market reach\n\n")

	sb.WriteString("**Financial Performance**\n")
	fmt.Fprintf(&sb, "- Q%d earnings %s analyst expectations by %d%%\n",
		g.intn(1, 4), pick("exceeded", "fell short of"), g.intn(1, 10))
	fmt.Fprintf(&sb, "- Revenue grew by %d%% year-over-year, driven by %s\n",
		g.intn(5, 20), pick("strong product sales", "service subscription growth"))
	fmt.Fprintf(&sb, "- The company %s its dividend of $%d.%02d per share\n\n",
		pick("announced", "maintained"), g.intn(1, 5), g.intn(0, 99))

	sb.WriteString("**Market Position and Competition**\n")
	fmt.Fprintf(&sb, "- %s %s market share in its core business segments\n", symbol, pick("gained", "maintained"))
	fmt.Fprintf(&sb, "- Competitors have responded with %s\n", pick("aggressive pricing strategies", "new product launches"))
	fmt.Fprintf(&sb, "- Industry analysts project %s conditions for the sector in the coming quarters\n\n",
		pick("favorable", "challenging"))

	fmt.Fprintf(&sb, "*Note: This is a simulated news summary based on known information about %s.*", symbol)
	return sb.String()
}

// ResearchResponse returns the canned answer for a persona. Personas that need
// context fall back to the general answer when it is missing.
func (g *Generator) ResearchResponse(promptType model.PromptType, rc *model.ResearchContext) string {
	switch {
	case promptType == model.PromptNewsSummary && rc != nil && rc.Symbol != "":
		summary := g.NewsSummary(rc.Symbol)
		// The trailing simulated-news line is replaced by the mock notice
		if i := strings.LastIndex(summary, "\n\n*Note:"); i >= 0 {
			summary = summary[:i]
		}
		return summary + MockNotice

	case promptType == model.PromptPortfolioAdvisor && rc != nil && len(rc.Symbols) > 0:
		return fmt.Sprintf("Based on your portfolio (%s), here are some observations:\n\n"+
			"- You have a mix of different sectors which provides some diversification\n"+
			"- Consider evaluating your exposure to market volatility\n"+
			"- Regular portfolio rebalancing is recommended to maintain your desired asset allocation",
			strings.Join(rc.Symbols, ", ")) + MockNotice

	case promptType == model.PromptWebsiteHelp:
		return "Here's how to navigate our platform:\n\n" +
			"- The Stock Monitor page allows you to track your favorite stocks\n" +
			"- Use the Research Assistant (this tool) to get insights and analysis\n" +
			"- The Portfolio section helps you manage your watchlist\n" +
			"- Detailed stock information is available on individual stock pages" + MockNotice

	case promptType == model.PromptStockRecommendations:
		return "Here are a few names to research further:\n\n" +
			"- **MSFT**: diversified cloud and software revenue. Risk: low. Rating: 4/5\n" +
			"- **JPM**: scale advantages in banking. Risk: medium. Rating: 3/5\n" +
			"- **XOM**: leveraged to energy prices. Risk: medium. Rating: 3/5\n\n" +
			"These are educational examples, not financial advice." + MockNotice

	default:
		return "Based on current market conditions:\n\n" +
			"- Diversification remains a key strategy for managing risk\n" +
			"- Consider both short-term opportunities and long-term investment goals\n" +
			"- Stay informed about economic indicators that might impact your investments\n" +
			"- Regular review of your investment strategy is recommended" + MockNotice
	}
}
