package handler

import (
	"errors"
	"net/http"

	"github.com/yourorg/market-gateway/internal/client"
	"github.com/yourorg/market-gateway/internal/model"
	"github.com/yourorg/market-gateway/internal/service"
	"github.com/yourorg/market-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResearchHandler handles the AI-backed endpoints
type ResearchHandler struct {
	researchService *service.ResearchService
	logger          *zap.Logger
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(researchService *service.ResearchService, logger *zap.Logger) *ResearchHandler {
	return &ResearchHandler{
		researchService: researchService,
		logger:          logger,
	}
}

// TestXAI handles a connectivity check against the chat upstream
// GET /api/test-xai
func (h *ResearchHandler) TestXAI(c *gin.Context) {
	message, err := h.researchService.TestConnection(c.Request.Context())
	if err != nil {
		if errors.Is(err, client.ErrNotConfigured) {
			utils.SendErrorResponse(c, http.StatusBadRequest, "X.AI API key is not configured")
			return
		}
		utils.SendErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
	})
}

// GetStockNewsSummary handles an AI summary of today's news for a symbol.
// It always answers 200; degradation is reported in the body.
// GET /api/stock-news-summary/:symbol
func (h *ResearchHandler) GetStockNewsSummary(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	c.JSON(http.StatusOK, h.researchService.NewsSummary(c.Request.Context(), symbol))
}

// Research handles a free-form research question
// POST /api/research
func (h *ResearchHandler) Research(c *gin.Context) {
	var req model.ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid research request", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusBadRequest, "Message is required")
		return
	}

	c.JSON(http.StatusOK, h.researchService.Research(c.Request.Context(), req))
}
