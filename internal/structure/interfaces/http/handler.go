package http

import (
	"github.com/gin-gonic/gin"
	analysis "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/internal/structure/application"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

// StructureHandler 期权结构 HTTP 处理器
type StructureHandler struct {
	svc *application.StructureService
}

// NewStructureHandler 创建 HTTP 处理器实例
func NewStructureHandler(svc *application.StructureService) *StructureHandler {
	return &StructureHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *StructureHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/structures")
	{
		api.GET("", h.List)
		api.POST("", h.Create)
		api.GET("/:id", h.Get)
		api.PUT("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
		api.POST("/:id/close", h.Close)
		api.POST("/:id/reopen", h.Reopen)
		api.POST("/:id/payoff", h.Payoff)
		api.POST("/:id/share", h.Share)
		api.GET("/:id/shares", h.Shares)
	}
}

func (h *StructureHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, items)
}

func (h *StructureHandler) Get(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *StructureHandler) Create(c *gin.Context) {
	var cmd application.CreateStructureCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	view, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, view)
}

func (h *StructureHandler) Update(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.UpdateStructureCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	view, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *StructureHandler) Delete(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

// Close 按标的现价平仓
func (h *StructureHandler) Close(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.CloseStructureCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	view, err := h.svc.Close(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

func (h *StructureHandler) Reopen(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.svc.Reopen(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Payoff 未平仓腿的到期盈亏
func (h *StructureHandler) Payoff(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req struct {
		SpotPriceRange analysis.PriceRange `json:"spotPriceRange"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	res, err := h.svc.Payoff(c.Request.Context(), middleware.CurrentUserID(c), id, req.SpotPriceRange)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, res)
}

// Share 分享给管理员
func (h *StructureHandler) Share(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.ShareStructureCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	share, err := h.svc.Share(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, share)
}

func (h *StructureHandler) Shares(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	shares, err := h.svc.Shares(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, shares)
}

func (h *StructureHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error(c.Request.Context(), "structure request failed", "error", err)
	}
	response.Error(c, err)
}
