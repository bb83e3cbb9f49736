package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// OperationLogStore 操作日志存储
type OperationLogStore interface {
	Insert(ctx context.Context, log *models.OperationLog) error
}

// 需要记录的HTTP方法
var loggedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// 不需要记录的路径
var excludedPaths = map[string]bool{
	"/auth/login": true,
	"/health":     true,
}

// OperationLoggerMiddleware 操作日志记录中间件
func OperationLoggerMiddleware(store OperationLogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 检查是否需要记录此操作
		if !shouldLogOperation(c) {
			c.Next()
			return
		}

		startTime := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// 创建自定义响应写入器以捕获响应体
		blw := &bodyLogWriter{
			body:           bytes.NewBufferString(""),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		// 读取并重置请求体
		var requestBody interface{}
		if c.Request.Body != nil {
			requestBodyBytes, err := io.ReadAll(c.Request.Body)
			if err != nil {
				utils.Logger.Error().Err(err).Msg("读取请求体失败")
			} else {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBodyBytes))
				requestBody = decodeBody(requestBodyBytes, c.Request.Header.Get("Content-Type"))
			}
		}

		c.Next()

		responseTime := time.Since(startTime).Milliseconds()
		responseData := decodeBody(blw.body.Bytes(), c.Writer.Header().Get("Content-Type"))

		// 获取错误信息（如果有）
		var errorMessage string
		if len(c.Errors) > 0 {
			errorMessage = c.Errors.String()
		}

		operatorID, operatorName, operatorRole := extractUserInfo(c)
		operationLog := models.OperationLog{
			RequestID:     GetRequestID(c),
			Method:        method,
			Path:          path,
			OperatorID:    operatorID,
			OperatorName:  operatorName,
			OperatorRole:  operatorRole,
			RequestBody:   sanitizeData(requestBody),
			ResponseData:  sanitizeData(responseData),
			StatusCode:    c.Writer.Status(),
			Success:       c.Writer.Status() < http.StatusBadRequest,
			ErrorMessage:  errorMessage,
			OperationTime: startTime,
			ResponseTime:  responseTime,
			IPAddress:     getClientIP(c),
			UserAgent:     c.Request.UserAgent(),
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 3*time.Second)
		defer cancel()
		if err := store.Insert(ctx, &operationLog); err != nil {
			utils.Logger.Error().Err(err).Msg("保存操作日志失败")
			// 尝试保存最小日志
			minimalLog := operationLog
			minimalLog.RequestBody = nil
			minimalLog.ResponseData = nil
			minimalLog.ErrorMessage = "保存详细日志失败"
			if saveErr := store.Insert(ctx, &minimalLog); saveErr != nil {
				utils.Logger.Error().Err(saveErr).Msg("保存最小日志失败")
			}
		}

		utils.Logger.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Str("operator", operatorName).
			Int64("responseTime", responseTime).
			Msg("操作日志记录完成")
	}
}

// shouldLogOperation 检查是否需要记录此操作
func shouldLogOperation(c *gin.Context) bool {
	if excludedPaths[c.Request.URL.Path] {
		return false
	}
	return loggedMethods[c.Request.Method]
}

// extractUserInfo 从上下文中提取用户信息
func extractUserInfo(c *gin.Context) (string, string, string) {
	value, exists := c.Get(utils.IdentityKey)
	if !exists {
		return "anonymous", "匿名用户", "UNKNOWN"
	}
	identity, ok := value.(models.Identity)
	if !ok {
		return "anonymous", "匿名用户", "UNKNOWN"
	}
	return identity.ID, identity.Name, string(identity.Role)
}

// decodeBody JSON内容解析为对象，其余保留原文
func decodeBody(raw []byte, contentType string) interface{} {
	if len(raw) == 0 {
		return nil
	}
	if strings.Contains(contentType, "application/json") {
		var body interface{}
		if err := json.Unmarshal(raw, &body); err == nil {
			return body
		}
		utils.Logger.Warn().Msg("解析JSON内容失败")
	}
	return string(raw)
}

// sanitizeData 清理数据中的敏感信息
func sanitizeData(data interface{}) interface{} {
	if data == nil {
		return nil
	}

	// 处理map类型
	if m, ok := data.(map[string]interface{}); ok {
		sanitized := make(map[string]interface{})
		for k, v := range m {
			switch strings.ToLower(k) {
			case "password", "token", "authorization", "secret", "key":
				sanitized[k] = "******"
			default:
				sanitized[k] = sanitizeData(v)
			}
		}
		return sanitized
	}

	// 处理切片类型
	if s, ok := data.([]interface{}); ok {
		sanitized := make([]interface{}, len(s))
		for i, v := range s {
			sanitized[i] = sanitizeData(v)
		}
		return sanitized
	}

	return data
}

// getClientIP 获取客户端IP地址
func getClientIP(c *gin.Context) string {
	if ip := c.Request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.ClientIP()
}
