package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsdesk/internal/risk/application"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

// AlertHandler 风险告警 HTTP 处理器
type AlertHandler struct {
	svc *application.AlertService
}

// NewAlertHandler 创建 HTTP 处理器实例
func NewAlertHandler(svc *application.AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *AlertHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/alerts")
	{
		api.GET("", h.List)
		api.POST("", h.Create)
		api.POST("/check-thresholds", h.CheckRiskThresholds)
		api.GET("/:id", h.Get)
		api.PUT("/:id", h.Update)
		api.PATCH("/:id/read", h.MarkAsRead)
		api.DELETE("/:id", h.Delete)
	}
}

func (h *AlertHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, items)
}

func (h *AlertHandler) Create(c *gin.Context) {
	var cmd application.CreateAlertCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	alert, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, alert)
}

func (h *AlertHandler) Get(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	alert, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, alert)
}

func (h *AlertHandler) Update(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.UpdateAlertCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	alert, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, alert)
}

// CheckRiskThresholds 组合亏损阈值检查
func (h *AlertHandler) CheckRiskThresholds(c *gin.Context) {
	var cmd application.CheckThresholdCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	if cmd.PortfolioID == 0 {
		response.Error(c, apperr.Invalid("portfolioId is required"))
		return
	}
	result, err := h.svc.CheckRiskThresholds(c.Request.Context(), middleware.CurrentUserID(c), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

func (h *AlertHandler) MarkAsRead(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.MarkAsRead(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

func (h *AlertHandler) Delete(c *gin.Context) {
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

func (h *AlertHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error(c.Request.Context(), "alert request failed", "error", err)
	}
	response.Error(c, err)
}
