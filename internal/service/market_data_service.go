package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/fallback"
	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/utils"

	"go.uber.org/zap"
)

// ErrNoIndices is returned when no tracked index could be fetched
var ErrNoIndices = errors.New("failed to retrieve market indices")

// QuoteSource is the quotes upstream
type QuoteSource interface {
	GetGlobalQuote(ctx context.Context, symbol string) (model.RawPayload, error)
	GetCompanyOverview(ctx context.Context, symbol string) (model.RawPayload, error)
	GetTimeSeries(ctx context.Context, symbol string, interval model.Interval, outputSize string) (map[string]model.RawPayload, error)
}

// EventPublisher receives a record of every synthetic response served
type EventPublisher interface {
	PublishFallback(ctx context.Context, event model.FallbackEvent) error
}

// MarketDataServiceOption is a configuration option for the market data service
type MarketDataServiceOption func(*MarketDataService)

// WithEventPublisher publishes fallback events
func WithEventPublisher(publisher EventPublisher) MarketDataServiceOption {
	return func(s *MarketDataService) {
		s.publisher = publisher
	}
}

// WithMarketClock overrides the time source used for lastUpdated stamps
func WithMarketClock(now func() time.Time) MarketDataServiceOption {
	return func(s *MarketDataService) {
		s.now = now
	}
}

// MarketDataService handles quote, history and batch market operations
type MarketDataService struct {
	source      QuoteSource
	generator   *fallback.Generator
	useMockData bool
	concurrency int
	publisher   EventPublisher
	now         func() time.Time
	logger      *zap.Logger
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(
	source QuoteSource,
	generator *fallback.Generator,
	useMockData bool,
	concurrency int,
	logger *zap.Logger,
	options ...MarketDataServiceOption,
) *MarketDataService {
	s := &MarketDataService{
		source:      source,
		generator:   generator,
		useMockData: useMockData,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// GetQuote retrieves a normalized quote. With fallback enabled any upstream
// failure is answered with synthetic data instead of an error.
func (s *MarketDataService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	raw, err := s.source.GetGlobalQuote(ctx, symbol)
	if err == nil {
		if _, ok := utils.ParseFloat(raw[fieldPrice]); !ok {
			err = fmt.Errorf("%w: no price for %s", client.ErrNoData, symbol)
		}
	}
	if err != nil {
		if s.useMockData {
			s.recordFallback(ctx, "quote", symbol, err)
			return s.generator.Quote(symbol), nil
		}
		return model.Quote{}, err
	}

	// The overview only adds the name and market cap
	overview, err := s.source.GetCompanyOverview(ctx, symbol)
	if err != nil {
		s.logger.Debug("Company overview unavailable",
			zap.String("symbol", symbol),
			zap.Error(err))
		overview = nil
	}

	return NormalizeQuote(symbol, raw, overview), nil
}

// GetHistorical retrieves a newest-first series capped by the query period
func (s *MarketDataService) GetHistorical(ctx context.Context, query model.HistoricalQuery) ([]model.HistoricalBar, error) {
	days := PeriodDays(query.Period)

	series, err := s.source.GetTimeSeries(ctx, query.Symbol, query.Interval, OutputSize(query.Period))
	if err != nil {
		if s.useMockData {
			s.recordFallback(ctx, "historical", query.Symbol, err)
			return s.historicalFallback(query.Symbol, days), nil
		}
		return nil, err
	}

	return BuildSeries(series, days), nil
}

func (s *MarketDataService) historicalFallback(symbol string, days int) []model.HistoricalBar {
	bars := s.generator.Historical(symbol, days)
	if len(bars) > days {
		bars = bars[:days]
	}
	return bars
}

// GetMarketIndices retrieves the tracked index ETFs, omitting failed symbols
func (s *MarketDataService) GetMarketIndices(ctx context.Context) ([]model.MarketIndexEntry, error) {
	slots := make([]*model.MarketIndexEntry, len(model.MarketIndices))

	forEachLimited(ctx, len(model.MarketIndices), s.concurrency, func(ctx context.Context, i int) {
		tracked := model.MarketIndices[i]
		raw, err := s.source.GetGlobalQuote(ctx, tracked.Symbol)
		if err != nil {
			s.logger.Warn("Failed to fetch market index",
				zap.String("symbol", tracked.Symbol),
				zap.Error(err))
			return
		}
		entry := NormalizeIndexEntry(tracked, raw)
		slots[i] = &entry
	})

	indices := compact(slots)
	if len(indices) == 0 {
		return nil, ErrNoIndices
	}
	return indices, nil
}

// GetTopMovers retrieves the candidates with the largest absolute daily move
func (s *MarketDataService) GetTopMovers(ctx context.Context) []model.TopMover {
	slots := make([]*model.TopMover, len(model.TopMoverCandidates))

	forEachLimited(ctx, len(model.TopMoverCandidates), s.concurrency, func(ctx context.Context, i int) {
		symbol := model.TopMoverCandidates[i]
		raw, err := s.source.GetGlobalQuote(ctx, symbol)
		if err != nil {
			s.logger.Warn("Failed to fetch top mover candidate",
				zap.String("symbol", symbol),
				zap.Error(err))
			return
		}

		name := symbol
		if overview, err := s.source.GetCompanyOverview(ctx, symbol); err == nil {
			name = utils.String(overview["Name"], symbol)
		}

		slots[i] = &model.TopMover{
			MarketIndexEntry: NormalizeIndexEntry(model.TrackedSymbol{Symbol: symbol, Label: name}, raw),
			Volume:           utils.Float(raw[fieldVolume]),
		}
	})

	movers := compact(slots)
	slices.SortStableFunc(movers, func(a, b model.TopMover) int {
		return compareDesc(math.Abs(a.ChangePercent), math.Abs(b.ChangePercent))
	})

	if len(movers) > model.MaxTopMovers {
		movers = movers[:model.MaxTopMovers]
	}
	return movers
}

// GetSectorPerformance retrieves the daily change of every sector ETF. A
// failed sector is reported with zero performance and the error flag set.
func (s *MarketDataService) GetSectorPerformance(ctx context.Context) []model.SectorPerformanceEntry {
	entries := make([]model.SectorPerformanceEntry, len(model.SectorETFs))

	forEachLimited(ctx, len(model.SectorETFs), s.concurrency, func(ctx context.Context, i int) {
		tracked := model.SectorETFs[i]
		entry := model.SectorPerformanceEntry{Sector: tracked.Label}

		raw, err := s.source.GetGlobalQuote(ctx, tracked.Symbol)
		if err != nil {
			s.logger.Warn("Failed to fetch sector performance",
				zap.String("sector", tracked.Label),
				zap.String("symbol", tracked.Symbol),
				zap.Error(err))
			entry.Error = true
		} else {
			entry.Performance = utils.Percent(raw[fieldChangePercent])
		}

		entry.LastUpdated = s.now().UTC().Format(time.RFC3339)
		entries[i] = entry
	})

	slices.SortStableFunc(entries, func(a, b model.SectorPerformanceEntry) int {
		return compareDesc(a.Performance, b.Performance)
	})
	return entries
}

func (s *MarketDataService) recordFallback(ctx context.Context, endpoint, symbol string, cause error) {
	s.logger.Info("Using mock data",
		zap.String("endpoint", endpoint),
		zap.String("symbol", symbol),
		zap.Error(cause))

	if s.publisher == nil {
		return
	}
	event := model.FallbackEvent{
		Endpoint:  endpoint,
		Symbol:    symbol,
		Reason:    cause.Error(),
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.PublishFallback(ctx, event); err != nil {
		s.logger.Warn("Failed to publish fallback event", zap.Error(err))
	}
}

func compact[T any](slots []*T) []T {
	out := make([]T, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
