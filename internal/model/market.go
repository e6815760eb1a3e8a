package model

// MarketIndexEntry represents one tracked index ETF
type MarketIndexEntry struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// TopMover is a market entry that also carries traded volume
type TopMover struct {
	MarketIndexEntry
	Volume float64 `json:"volume"`
}

// SectorPerformanceEntry represents the daily performance of one sector ETF
type SectorPerformanceEntry struct {
	Sector      string  `json:"sector"`
	Performance float64 `json:"performance"`
	LastUpdated string  `json:"lastUpdated"`
	Error       bool    `json:"error,omitempty"`
}

// TrackedSymbol pairs an upstream symbol with its display label
type TrackedSymbol struct {
	Symbol string
	Label  string
}

// MarketIndices are the ETFs tracking the S&P 500, NASDAQ, Dow Jones and Russell 2000
var MarketIndices = []TrackedSymbol{
	{Symbol: "SPY", Label: "S&P 500"},
	{Symbol: "QQQ", Label: "NASDAQ"},
	{Symbol: "DIA", Label: "Dow Jones"},
	{Symbol: "IWM", Label: "Russell 2000"},
}

// TopMoverCandidates is the large-cap universe scanned for top movers
var TopMoverCandidates = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "JPM",
	"V", "HD", "PG", "UNH", "XOM", "COST", "AVGO", "ADBE",
}

// MaxTopMovers caps the top movers response
const MaxTopMovers = 8

// SectorETFs maps SPDR sector ETFs to sector names
var SectorETFs = []TrackedSymbol{
	{Symbol: "XLK", Label: "Technology"},
	{Symbol: "XLF", Label: "Financial"},
	{Symbol: "XLV", Label: "Healthcare"},
	{Symbol: "XLE", Label: "Energy"},
	{Symbol: "XLY", Label: "Consumer Cyclical"},
	{Symbol: "XLP", Label: "Consumer Defensive"},
	{Symbol: "XLI", Label: "Industrial"},
	{Symbol: "XLB", Label: "Basic Materials"},
	{Symbol: "XLRE", Label: "Real Estate"},
	{Symbol: "XLU", Label: "Utilities"},
	{Symbol: "XLC", Label: "Communication Services"},
}
