package service

import (
	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/utils"
)

// Alpha Vantage Global Quote field names
const (
	fieldOpen          = "02. open"
	fieldHigh          = "03. high"
	fieldLow           = "04. low"
	fieldPrice         = "05. price"
	fieldVolume        = "06. volume"
	fieldPreviousClose = "08. previous close"
	fieldChange        = "09. change"
	fieldChangePercent = "10. change percent"
)

// NormalizeQuote maps a raw Global Quote and an optional company overview to
// a Quote. Missing or malformed numbers become 0.
func NormalizeQuote(symbol string, quote, overview model.RawPayload) model.Quote {
	return model.Quote{
		Symbol:                     symbol,
		ShortName:                  utils.String(overview["Name"], symbol),
		RegularMarketPrice:         utils.Float(quote[fieldPrice]),
		RegularMarketChange:        utils.Float(quote[fieldChange]),
		RegularMarketChangePercent: utils.Percent(quote[fieldChangePercent]),
		RegularMarketVolume:        utils.Float(quote[fieldVolume]),
		MarketCap:                  utils.Float(overview["MarketCapitalization"]),
		RegularMarketOpen:          utils.Float(quote[fieldOpen]),
		RegularMarketDayHigh:       utils.Float(quote[fieldHigh]),
		RegularMarketDayLow:        utils.Float(quote[fieldLow]),
		RegularMarketPreviousClose: utils.Float(quote[fieldPreviousClose]),
	}
}

// NormalizeIndexEntry maps a raw Global Quote to a market entry
func NormalizeIndexEntry(tracked model.TrackedSymbol, quote model.RawPayload) model.MarketIndexEntry {
	return model.MarketIndexEntry{
		Symbol:        tracked.Symbol,
		Name:          tracked.Label,
		Price:         utils.Float(quote[fieldPrice]),
		Change:        utils.Float(quote[fieldChange]),
		ChangePercent: utils.Percent(quote[fieldChangePercent]),
	}
}
