// Package response 统一 HTTP 响应结构
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
)

// Response 响应信封
type Response struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Data   any    `json:"data,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "success", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Code: 0, Msg: "success", Data: data})
}

// ErrorWithStatus 以指定状态码返回错误
func ErrorWithStatus(c *gin.Context, status int, msg string, detail string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Msg: msg, Detail: detail})
}

// Error 按错误分类映射状态码
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	ErrorWithStatus(c, status, apperr.Message(err), "")
}

// StatusOf 返回错误对应的 HTTP 状态码
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
