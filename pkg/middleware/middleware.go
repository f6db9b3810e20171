// Package middleware 提供 Gin 通用中间件（请求日志、panic recover、CORS、限流、指标、调用方身份）
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/auth"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/metrics"
	"github.com/wyfcoding/optionsdesk/pkg/response"
)

const (
	// RequestIDKey gin context key for request ID
	RequestIDKey = "request_id"
	// UserIDKey gin context key for caller ID
	UserIDKey = "user_id"
	// RequestIDHeader 请求 ID 头
	RequestIDHeader = "X-Request-ID"
)

// GinLoggingMiddleware Gin 日志中间件
func GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		ctx := logger.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info(c.Request.Context(), "HTTP request completed",
			"method", method,
			"path", path,
			"client_ip", c.ClientIP(),
			"status_code", c.Writer.Status(),
			"response_size", c.Writer.Size(),
			"duration", time.Since(start),
		)
	}
}

// GinRecoveryMiddleware Gin panic 恢复中间件
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "HTTP request panicked", "panic", err)
				response.ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", c.GetString(RequestIDKey))
			}
		}()
		c.Next()
	}
}

// GinCORSMiddleware Gin CORS 中间件
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// GinMetricsMiddleware 记录请求计数与耗时，按路由模板聚合
func GinMetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// IdentityMiddleware 解析调用方身份
// 配置了密钥时只接受 Bearer 令牌；否则信任网关注入的用户头
func IdentityMiddleware(verifier *auth.JWT, userHeader string) gin.HandlerFunc {
	if userHeader == "" {
		userHeader = "X-User-ID"
	}
	return func(c *gin.Context) {
		var (
			userID uint
			err    error
		)
		if verifier != nil && len(verifier.Secret) > 0 {
			userID, err = userFromBearer(c, verifier)
		} else {
			userID, err = parseUserID(c.GetHeader(userHeader))
		}
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func userFromBearer(c *gin.Context, verifier *auth.JWT) (uint, error) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return 0, apperr.Unauthenticated("missing bearer token")
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		return 0, apperr.Unauthenticated("invalid token")
	}
	uid, err := claims.UserID()
	if err != nil {
		return 0, apperr.Unauthenticated("invalid token subject")
	}
	return uid, nil
}

func parseUserID(raw string) (uint, error) {
	if raw == "" {
		return 0, apperr.Unauthenticated("missing caller identity")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Unauthenticated("invalid caller identity")
	}
	return uint(id), nil
}

// CurrentUserID 读取 IdentityMiddleware 写入的调用方 ID
func CurrentUserID(c *gin.Context) uint {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

// ParamID 解析路径中的正整数 ID
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("%s must be a positive integer", name)
	}
	return uint(id), nil
}
