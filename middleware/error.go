package middleware

import (
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 全局错误处理中间件，处理通过 c.Error 记录但未响应的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果已经写出响应，不重复处理
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			utils.HandleError(c, c.Errors.Last().Err)
		}
	}
}
