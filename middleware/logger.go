package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// bodyLogWriter 用于记录响应内容
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现 ResponseWriter 接口
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Logger 日志中间件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		requestID := GetRequestID(c)

		// 请求体只在debug级别记录
		if utils.Logger.GetLevel() <= zerolog.DebugLevel {
			headers := make(map[string]string)
			for k, v := range c.Request.Header {
				if len(v) > 0 {
					headers[k] = v[0]
				}
			}

			var requestBody []byte
			if c.Request.Body != nil {
				requestBody, _ = io.ReadAll(c.Request.Body)
				// 恢复请求体以便后续处理
				c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			}

			utils.LogApiRequest(requestID, method, path, c.Request.URL.Query(), sanitizeRaw(requestBody), headers)
		}

		c.Next()

		utils.LogApiResponse(requestID, method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

// Recovery 恢复中间件
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// 记录崩溃信息
		utils.Logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("requestId", GetRequestID(c)).
			Msg("服务崩溃")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	})
}

// sanitizeRaw 解析JSON请求体并隐藏敏感字段
func sanitizeRaw(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}
	return sanitizeData(body)
}
