package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsdesk/internal/strategy/application"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

// StrategyHandler 策略 HTTP 处理器
type StrategyHandler struct {
	svc *application.StrategyService
}

// NewStrategyHandler 创建 HTTP 处理器实例
func NewStrategyHandler(svc *application.StrategyService) *StrategyHandler {
	return &StrategyHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *StrategyHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/strategies")
	{
		api.GET("", h.List)
		api.POST("", h.Create)
		api.GET("/:id", h.Get)
		api.PUT("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

func (h *StrategyHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, items)
}

func (h *StrategyHandler) Get(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	st, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, st)
}

func (h *StrategyHandler) Create(c *gin.Context) {
	var cmd application.CreateStrategyCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	st, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, st)
}

func (h *StrategyHandler) Update(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.UpdateStrategyCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	st, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, st)
}

func (h *StrategyHandler) Delete(c *gin.Context) {
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

func (h *StrategyHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error(c.Request.Context(), "strategy request failed", "error", err)
	}
	response.Error(c, err)
}
