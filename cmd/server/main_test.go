package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourorg/market-gateway/internal/config"
	"github.com/yourorg/market-gateway/internal/handler"
	"github.com/yourorg/market-gateway/internal/middleware"
)

func TestCreateLogger(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}

	for level, want := range tests {
		logger, err := createLogger(level)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(want), level)
		assert.False(t, logger.Core().Enabled(want-1), level)
	}
}

func TestSetupRouter_InMemoryRateLimit(t *testing.T) {
	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, BurstSize: 1},
		Logging:   config.LoggingConfig{Level: "info"},
	}
	logger := zap.NewNop()
	router := setupRouter(cfg, logger, nil,
		handler.NewMarketDataHandler(nil, logger),
		handler.NewResearchHandler(nil, logger))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "*", first.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, first.Header().Get(middleware.RequestIDHeader))

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestSetupKafka_DisabledWithoutBrokers(t *testing.T) {
	assert.Nil(t, setupKafka(&config.Config{}, zap.NewNop()))
}
