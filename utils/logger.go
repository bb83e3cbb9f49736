package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger 全局日志对象，InitLogger 之前为空日志
var Logger = zerolog.Nop()

// InitLogger 初始化日志系统
func InitLogger(level string, pretty bool) {
	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	Logger = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(lvl)

	Logger.Info().Str("level", lvl.String()).Msg("日志系统初始化完成")
}

// LogApiRequest 记录API请求
func LogApiRequest(requestID, method, url string, params, body interface{}, headers map[string]string) {
	// 过滤敏感信息
	if auth := headers["Authorization"]; auth != "" {
		headers["Authorization"] = TruncateSecret(auth)
	}

	Logger.Debug().
		Str("requestId", requestID).
		Str("method", method).
		Str("url", url).
		Interface("params", params).
		Interface("body", body).
		Interface("headers", headers).
		Msg("API请求")
}

// LogApiResponse 记录API响应
func LogApiResponse(requestID, method, url string, statusCode int, responseTime time.Duration, clientIP string) {
	event := Logger.Info()
	if statusCode >= 500 {
		event = Logger.Error()
	} else if statusCode >= 400 {
		event = Logger.Warn()
	}
	event.
		Str("requestId", requestID).
		Str("method", method).
		Str("url", url).
		Int("statusCode", statusCode).
		Dur("responseTime", responseTime).
		Str("clientIp", clientIP).
		Msg("API响应")
}

// LogInfo 记录
func LogInfo(context map[string]interface{}, message string) {
	Logger.Info().
		Interface("context", context).
		Msg(message)
}

// LogError 记录错误
func LogError(err error, context map[string]interface{}, message string) {
	Logger.Error().
		Err(err).
		Interface("context", context).
		Msg(message)
}

// TruncateSecret 截断敏感字符串，只保留前15位
func TruncateSecret(s string) string {
	if len(s) > 15 {
		return s[:15] + "..."
	}
	return s
}
