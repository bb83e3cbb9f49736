package controllers

import (
	"net/http"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/service"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// AuthController 注册与登录
type AuthController struct {
	auth *service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register 用户注册
func (ctl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.BindingError(err))
		return
	}

	utils.Logger.Info().
		Str("email", req.Email).
		Str("role", string(req.Role)).
		Msg("注册请求")

	resp, err := ctl.auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login 用户登录
func (ctl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.BindingError(err))
		return
	}

	utils.Logger.Info().Str("email", req.Email).Msg("登录尝试")

	resp, err := ctl.auth.Login(c.Request.Context(), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me 当前登录用户
func (ctl *AuthController) Me(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	user, err := ctl.auth.Me(c.Request.Context(), identity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
