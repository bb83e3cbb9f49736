package middleware

import (
	"context"
	"strings"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// Authenticator 根据令牌得到本次请求的身份
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, error)
}

// AuthMiddleware 认证中间件
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, false)
}

// AuthMiddlewareWithQueryToken 认证中间件，允许通过 token 查询参数传递令牌(websocket)
func AuthMiddlewareWithQueryToken(auth Authenticator) gin.HandlerFunc {
	return authenticate(auth, true)
}

func authenticate(auth Authenticator, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		utils.Logger.Debug().
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Str("authorization", utils.TruncateSecret(authHeader)).
			Msg("验证请求")

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			utils.Logger.Info().Msg("缺少Authorization头")
			utils.HandleError(c, utils.CreateUnauthorizedError("No token, authorization denied"))
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.HandleError(c, err)
			return
		}

		// 将身份存储到上下文
		utils.SetIdentity(c, identity)

		utils.Logger.Debug().
			Str("userId", identity.ID).
			Str("role", string(identity.Role)).
			Msg("验证成功")

		c.Next()
	}
}

// RequireRoles 角色校验中间件
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	required := make([]string, 0, len(roles))
	for _, role := range roles {
		required = append(required, string(role))
	}

	return func(c *gin.Context) {
		identity, ok := utils.MustIdentity(c)
		if !ok {
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		utils.Logger.Info().
			Str("userId", identity.ID).
			Str("role", string(identity.Role)).
			Strs("requiredRoles", required).
			Str("path", c.Request.URL.Path).
			Msg("权限不足")

		utils.HandleError(c, utils.CreateForbiddenError("Access denied: insufficient permissions", gin.H{
			"requiredRoles": required,
			"userRole":      string(identity.Role),
		}))
	}
}
