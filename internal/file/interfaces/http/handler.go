package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsdesk/internal/file/application"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/middleware"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

// FileHandler 文件 HTTP 处理器
type FileHandler struct {
	svc *application.FileService
}

// NewFileHandler 创建 HTTP 处理器实例
func NewFileHandler(svc *application.FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/files")
	{
		api.GET("", h.List)
		api.POST("", h.Upload)
		api.GET("/:id", h.Get)
		api.PUT("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

func (h *FileHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, items)
}

// Upload base64 文件上传
func (h *FileHandler) Upload(c *gin.Context) {
	var cmd application.UploadFileCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	res, err := h.svc.Upload(c.Request.Context(), middleware.CurrentUserID(c), cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, res)
}

func (h *FileHandler) Get(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	f, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, f)
}

// Update 修改文件元数据
func (h *FileHandler) Update(c *gin.Context) {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var cmd application.UpdateFileCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, apperr.Invalid("%s", err.Error()))
		return
	}
	f, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), id, cmd)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, f)
}

func (h *FileHandler) Delete(c *gin.Context) {
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

func (h *FileHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		logger.Error(c.Request.Context(), "file request failed", "error", err)
	}
	response.Error(c, err)
}
