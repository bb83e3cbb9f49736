package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/telecaller_crm/models"
)

// IdentityKey gin上下文中保存登录身份的键
const IdentityKey = "user"

// SetIdentity 保存当前请求的登录身份
func SetIdentity(c *gin.Context, identity models.Identity) {
	c.Set(IdentityKey, identity)
}

// GetIdentity 获取当前请求的登录身份
func GetIdentity(c *gin.Context) (models.Identity, error) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return models.Identity{}, CreateUnauthorizedError("No token, authorization denied")
	}

	identity, ok := value.(models.Identity)
	if !ok || identity.ID == "" {
		return models.Identity{}, CreateUnauthorizedError("Token is not valid")
	}

	Logger.Debug().
		Str("id", identity.ID).
		Str("role", string(identity.Role)).
		Msg("GetIdentity")
	return identity, nil
}

// MustIdentity 获取登录身份，失败时直接写入错误响应
func MustIdentity(c *gin.Context) (models.Identity, bool) {
	identity, err := GetIdentity(c)
	if err != nil {
		HandleError(c, err)
		return models.Identity{}, false
	}
	return identity, true
}
