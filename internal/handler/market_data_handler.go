package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/service"
	"github.com/yourorg/market-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MarketDataHandler handles quote, history and market overview requests
type MarketDataHandler struct {
	marketDataService *service.MarketDataService
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(marketDataService *service.MarketDataService, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		logger:            logger,
	}
}

// GetQuote handles retrieving the latest quote for a symbol
// GET /api/quote/:symbol
func (h *MarketDataHandler) GetQuote(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))

	quote, err := h.marketDataService.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		h.logger.Error("Failed to get quote", zap.Error(err), zap.String("symbol", symbol))

		switch {
		case errors.Is(err, client.ErrUpstreamError):
			utils.SendErrorResponse(c, http.StatusBadRequest, client.UpstreamMessage(err))
		case errors.Is(err, client.ErrRateLimited):
			utils.SendErrorResponse(c, http.StatusTooManyRequests, "API rate limit reached. Please try again later.")
		case errors.Is(err, client.ErrNoData), errors.Is(err, client.ErrInvalidResponse):
			utils.SendErrorResponse(c, http.StatusNotFound, fmt.Sprintf("Unable to retrieve quote data for %s", symbol))
		default:
			utils.SendErrorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch quote for %s", symbol))
		}
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetHistorical handles retrieving a historical price series
// GET /api/historical/:symbol?period=1mo&interval=daily
func (h *MarketDataHandler) GetHistorical(c *gin.Context) {
	query := model.HistoricalQuery{
		Symbol:   normalizeSymbol(c.Param("symbol")),
		Period:   service.ParsePeriod(c.DefaultQuery("period", string(model.PeriodOneMonth))),
		Interval: service.ParseInterval(c.DefaultQuery("interval", string(model.IntervalDaily))),
	}

	bars, err := h.marketDataService.GetHistorical(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("Failed to get historical data",
			zap.Error(err),
			zap.String("symbol", query.Symbol),
			zap.String("period", string(query.Period)),
			zap.String("interval", string(query.Interval)))

		if isMissingData(err) {
			utils.SendErrorResponse(c, http.StatusNotFound, fmt.Sprintf("Unable to retrieve historical data for %s", query.Symbol))
			return
		}
		utils.SendErrorResponse(c, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch historical data for %s", query.Symbol))
		return
	}

	c.JSON(http.StatusOK, bars)
}

// GetMarketIndices handles retrieving the major index ETFs
// GET /api/market-indices
func (h *MarketDataHandler) GetMarketIndices(c *gin.Context) {
	indices, err := h.marketDataService.GetMarketIndices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get market indices", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve market indices")
		return
	}

	c.JSON(http.StatusOK, indices)
}

// GetTopMovers handles retrieving the biggest movers among large caps
// GET /api/top-movers
func (h *MarketDataHandler) GetTopMovers(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketDataService.GetTopMovers(c.Request.Context()))
}

// GetSectorPerformance handles retrieving the daily performance per sector
// GET /api/sector-performance
func (h *MarketDataHandler) GetSectorPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketDataService.GetSectorPerformance(c.Request.Context()))
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func isMissingData(err error) bool {
	return errors.Is(err, client.ErrNoData) ||
		errors.Is(err, client.ErrUpstreamError) ||
		errors.Is(err, client.ErrRateLimited) ||
		errors.Is(err, client.ErrInvalidResponse)
}
