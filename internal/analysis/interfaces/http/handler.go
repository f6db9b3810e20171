package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsdesk/internal/analysis/application"
	"github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

// AnalysisHandler 定价、盈亏分析与历史查询
type AnalysisHandler struct {
	cmd   *application.AnalysisCommandService
	query *application.AnalysisQueryService
}

// NewAnalysisHandler 创建 HTTP 处理器实例
func NewAnalysisHandler(cmd *application.AnalysisCommandService, query *application.AnalysisQueryService) *AnalysisHandler {
	return &AnalysisHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/analysis")
	{
		api.POST("/black-scholes", h.CalculateBlackScholes)
		api.POST("/payoff", h.CalculatePayoff)
		api.GET("/history", h.GetHistory)
	}
}

// BlackScholesRequest 定价请求
type BlackScholesRequest struct {
	SpotPrice    float64 `json:"spotPrice"`
	StrikePrice  float64 `json:"strikePrice"`
	TimeToExpiry float64 `json:"timeToExpiry"`
	RiskFreeRate float64 `json:"riskFreeRate"`
	Volatility   float64 `json:"volatility"`
	OptionType   string  `json:"optionType" binding:"required"`
}

// PayoffRequest 盈亏分析请求，legs 非空时按组合计算
type PayoffRequest struct {
	StrategyType   string            `json:"strategyType"`
	StrikePrice    float64           `json:"strikePrice"`
	Premium        float64           `json:"premium"`
	Quantity       int               `json:"quantity"`
	SpotPriceRange domain.PriceRange `json:"spotPriceRange"`
	Legs           []domain.Leg      `json:"legs"`
}

// CalculateBlackScholes 期权定价
func (h *AnalysisHandler) CalculateBlackScholes(c *gin.Context) {
	var req BlackScholesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.cmd.CalculateBlackScholes(c.Request.Context(), middleware.CurrentUserID(c), application.CalculateBlackScholesCommand{
		SpotPrice:    req.SpotPrice,
		StrikePrice:  req.StrikePrice,
		TimeToExpiry: req.TimeToExpiry,
		RiskFreeRate: req.RiskFreeRate,
		Volatility:   req.Volatility,
		OptionType:   req.OptionType,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.Error(c.Request.Context(), "Failed to calculate option price", "error", err)
		}
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CalculatePayoff 到期盈亏曲线
func (h *AnalysisHandler) CalculatePayoff(c *gin.Context) {
	var req PayoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.cmd.CalculatePayoff(c.Request.Context(), application.CalculatePayoffCommand{
		StrategyType:   req.StrategyType,
		StrikePrice:    req.StrikePrice,
		Premium:        req.Premium,
		Quantity:       req.Quantity,
		SpotPriceRange: req.SpotPriceRange,
		Legs:           req.Legs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetHistory 定价历史
func (h *AnalysisHandler) GetHistory(c *gin.Context) {
	query := application.HistoryQuery{UserID: middleware.CurrentUserID(c)}
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "limit must be an integer", "")
			return
		}
		query.Limit = &limit
	}

	items, err := h.query.GetHistory(c.Request.Context(), query)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			logger.Error(c.Request.Context(), "Failed to load analysis history", "error", err)
		}
		response.Error(c, err)
		return
	}

	response.Success(c, items)
}
