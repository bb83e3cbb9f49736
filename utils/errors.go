package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError 字段校验错误，格式与前端约定一致
type FieldError struct {
	Msg      string      `json:"msg"`
	Param    string      `json:"param,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Location string      `json:"location,omitempty"`
}

// ApiError 自定义API错误
type ApiError struct {
	StatusCode int
	Message    string
	ErrorCode  string
	Details    interface{}
	Errors     []FieldError
	Err        error
}

// Error 实现error接口
func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *ApiError) Unwrap() error {
	return e.Err
}

// NewApiError 创建API错误
func NewApiError(message string, statusCode int, errorCode string) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    message,
		ErrorCode:  errorCode,
	}
}

// CreateNotFoundError 创建资源不存在错误
func CreateNotFoundError(resource string) *ApiError {
	return NewApiError(resource+" not found", http.StatusNotFound, "RESOURCE_NOT_FOUND")
}

// CreateUnauthorizedError 创建未授权错误
func CreateUnauthorizedError(message string) *ApiError {
	return NewApiError(message, http.StatusUnauthorized, "UNAUTHORIZED")
}

// CreateForbiddenError 创建权限不足错误
func CreateForbiddenError(message string, details interface{}) *ApiError {
	err := NewApiError(message, http.StatusForbidden, "FORBIDDEN")
	err.Details = details
	return err
}

// CreateValidationError 创建参数校验错误
func CreateValidationError(errs ...FieldError) *ApiError {
	err := NewApiError("Validation failed", http.StatusBadRequest, "VALIDATION_ERROR")
	err.Errors = errs
	return err
}

// CreateInternalError 创建内部错误，原因只写日志不返回前端
func CreateInternalError(cause error) *ApiError {
	err := NewApiError("Server error", http.StatusInternalServerError, "INTERNAL_ERROR")
	err.Err = cause
	return err
}

// IsStatus 判断错误是否为指定状态码的ApiError
func IsStatus(err error, statusCode int) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}

// HandleError 处理错误并返回适当的响应
func HandleError(c *gin.Context, err error) {
	if c == nil || err == nil {
		return
	}

	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		apiErr = CreateInternalError(err)
	}

	event := Logger.Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = Logger.Error()
	}
	event.Err(err).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Int("status", apiErr.StatusCode).
		Msg("API错误")

	c.AbortWithStatusJSON(apiErr.StatusCode, errorBody(apiErr))
}

// errorBody 构建错误响应体
func errorBody(apiErr *ApiError) gin.H {
	if apiErr.StatusCode == http.StatusBadRequest && len(apiErr.Errors) > 0 {
		return gin.H{"errors": apiErr.Errors}
	}
	body := gin.H{"message": apiErr.Message}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	return body
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, message string, statusCode int) {
	c.AbortWithStatusJSON(statusCode, gin.H{"message": message})
}

// MessageResponse 只返回提示信息的成功响应
func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
