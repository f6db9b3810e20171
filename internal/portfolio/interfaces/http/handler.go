package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsdesk/internal/portfolio/application"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

// PortfolioHandler 组合 HTTP 处理器
type PortfolioHandler struct {
	cmd   *application.PortfolioCommandService
	query *application.PortfolioQueryService
}

// NewPortfolioHandler 创建 HTTP 处理器实例
func NewPortfolioHandler(cmd *application.PortfolioCommandService, query *application.PortfolioQueryService) *PortfolioHandler {
	return &PortfolioHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *PortfolioHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/portfolios")
	{
		api.GET("", h.List)
		api.POST("", h.Create)
		api.GET("/:id", h.Get)
		api.PUT("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
		api.GET("/:id/strategies", h.GetStrategies)
		api.POST("/:id/strategies", h.AddStrategy)
		api.DELETE("/:id/strategies/:strategyId", h.RemoveStrategy)
	}
}

func (h *PortfolioHandler) List(c *gin.Context) {
	items, err := h.query.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, items)
}

func (h *PortfolioHandler) Get(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.query.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, p)
}

func (h *PortfolioHandler) Create(c *gin.Context) {
	var cmd application.CreatePortfolioCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	p, err := h.cmd.Create(c.Request.Context(), middleware.CurrentUserID(c), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, p)
}

func (h *PortfolioHandler) Update(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.UpdatePortfolioCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	p, err := h.cmd.Update(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, p)
}

func (h *PortfolioHandler) Delete(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.cmd.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *PortfolioHandler) GetStrategies(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.query.GetStrategies(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, items)
}

func (h *PortfolioHandler) AddStrategy(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		StrategyID uint `json:"strategyId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	cmd := application.StrategyLinkCommand{PortfolioID: id, StrategyID: req.StrategyID}
	if err := h.cmd.AddStrategy(c.Request.Context(), middleware.CurrentUserID(c), cmd); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *PortfolioHandler) RemoveStrategy(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	strategyID, err := middleware.ParamID(c, "strategyId")
	if err != nil {
		response.Error(c, err)
		return
	}
	cmd := application.StrategyLinkCommand{PortfolioID: id, StrategyID: strategyID}
	if err := h.cmd.RemoveStrategy(c.Request.Context(), middleware.CurrentUserID(c), cmd); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *PortfolioHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error(c.Request.Context(), "portfolio request failed", "error", err)
	}
	response.Error(c, err)
}
