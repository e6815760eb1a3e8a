package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every endpoint on the /api group
func RegisterRoutes(api *gin.RouterGroup, marketData *MarketDataHandler, research *ResearchHandler) {
	api.GET("/health", HealthCheck)

	// Market data
	api.GET("/quote/:symbol", marketData.GetQuote)
	api.GET("/historical/:symbol", marketData.GetHistorical)
	api.GET("/market-indices", marketData.GetMarketIndices)
	api.GET("/top-movers", marketData.GetTopMovers)
	api.GET("/sector-performance", marketData.GetSectorPerformance)

	// AI
	api.GET("/test-xai", research.TestXAI)
	api.GET("/stock-news-summary/:symbol", research.GetStockNewsSummary)
	api.POST("/research", research.Research)
}
