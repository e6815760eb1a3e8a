package service

import (
	"slices"
	"strings"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/utils"
)

var periodDays = map[model.Period]int{
	model.PeriodOneMonth:    30,
	model.PeriodThreeMonths: 90,
	model.PeriodSixMonths:   180,
	model.PeriodOneYear:     365,
}

// ParsePeriod returns the period for s. Empty and unknown values mean one month.
func ParsePeriod(s string) model.Period {
	p := model.Period(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := periodDays[p]; ok {
		return p
	}
	return model.PeriodOneMonth
}

// ParseInterval returns the interval for s. Both the long names and the
// 1d/1wk/1mo short forms are accepted; anything else means daily.
func ParseInterval(s string) model.Interval {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "1wk":
		return model.IntervalWeekly
	case "monthly", "1mo":
		return model.IntervalMonthly
	default:
		return model.IntervalDaily
	}
}

// PeriodDays is both the lookback window in days and the bar cap of a period
func PeriodDays(p model.Period) int {
	if days, ok := periodDays[p]; ok {
		return days
	}
	return periodDays[model.PeriodOneMonth]
}

// OutputSize selects the upstream series length needed to cover a period
func OutputSize(p model.Period) string {
	if p == model.PeriodOneYear {
		return client.OutputSizeFull
	}
	return client.OutputSizeCompact
}

// BuildSeries converts raw bars keyed by date into a newest-first series of
// at most limit bars.
func BuildSeries(series map[string]model.RawPayload, limit int) []model.HistoricalBar {
	bars := make([]model.HistoricalBar, 0, len(series))
	for date, values := range series {
		volume, ok := utils.ParseFloat(values["5. volume"])
		if !ok {
			volume = utils.Float(values["6. volume"])
		}

		bars = append(bars, model.HistoricalBar{
			Date:   date,
			Open:   utils.Float(values["1. open"]),
			High:   utils.Float(values["2. high"]),
			Low:    utils.Float(values["3. low"]),
			Close:  utils.Float(values["4. close"]),
			Volume: volume,
		})
	}

	// ISO dates sort lexically
	slices.SortFunc(bars, func(a, b model.HistoricalBar) int {
		return strings.Compare(b.Date, a.Date)
	})

	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}
	return bars
}
