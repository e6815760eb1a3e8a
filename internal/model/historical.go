package model

// DateLayout is the calendar-day format used for bar dates
const DateLayout = "2006-01-02"

// HistoricalBar represents one OHLCV bar of a historical series
type HistoricalBar struct {
	Date   string  `json:"Date"`
	Open   float64 `json:"Open"`
	High   float64 `json:"High"`
	Low    float64 `json:"Low"`
	Close  float64 `json:"Close"`
	Volume float64 `json:"Volume"`
}

// Period is the client-requested historical window
type Period string

const (
	PeriodOneMonth    Period = "1mo"
	PeriodThreeMonths Period = "3mo"
	PeriodSixMonths   Period = "6mo"
	PeriodOneYear     Period = "1y"
)

// Interval is the client-requested sampling granularity
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// HistoricalQuery represents a parsed request for historical data
type HistoricalQuery struct {
	Symbol   string
	Period   Period
	Interval Interval
}
