package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/model"
)

// fakeQuoteSource serves canned payloads per symbol. Symbols without an
// entry fail with ErrNoData.
type fakeQuoteSource struct {
	mu        sync.Mutex
	quotes    map[string]model.RawPayload
	overviews map[string]model.RawPayload
	series    map[string]map[string]model.RawPayload
	errs      map[string]error
	calls     []string

	lastInterval   model.Interval
	lastOutputSize string
}

func newFakeQuoteSource() *fakeQuoteSource {
	return &fakeQuoteSource{
		quotes:    map[string]model.RawPayload{},
		overviews: map[string]model.RawPayload{},
		series:    map[string]map[string]model.RawPayload{},
		errs:      map[string]error{},
	}
}

func (f *fakeQuoteSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeQuoteSource) GetGlobalQuote(_ context.Context, symbol string) (model.RawPayload, error) {
	f.record("quote:" + symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("%w: %s", client.ErrNoData, symbol)
}

func (f *fakeQuoteSource) GetCompanyOverview(_ context.Context, symbol string) (model.RawPayload, error) {
	f.record("overview:" + symbol)
	if o, ok := f.overviews[symbol]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("%w: overview %s", client.ErrNoData, symbol)
}

func (f *fakeQuoteSource) GetTimeSeries(_ context.Context, symbol string, interval model.Interval, outputSize string) (map[string]model.RawPayload, error) {
	f.record("series:" + symbol)
	f.mu.Lock()
	f.lastInterval = interval
	f.lastOutputSize = outputSize
	f.mu.Unlock()
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if s, ok := f.series[symbol]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: series %s", client.ErrNoData, symbol)
}

type fakeChat struct {
	configured bool
	answer     string
	err        error

	mu       sync.Mutex
	requests []model.ChatCompletionRequest
	timeouts []time.Duration
}

func (f *fakeChat) Configured() bool {
	return f.configured
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, request model.ChatCompletionRequest, timeout time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	f.timeouts = append(f.timeouts, timeout)
	return f.answer, f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.FallbackEvent
}

func (f *fakePublisher) PublishFallback(_ context.Context, event model.FallbackEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func quotePayload(price, change, percent, volume string) model.RawPayload {
	return model.RawPayload{
		"02. open":           price,
		"03. high":           price,
		"04. low":            price,
		"05. price":          price,
		"06. volume":         volume,
		"08. previous close": price,
		"09. change":         change,
		"10. change percent": percent,
	}
}
